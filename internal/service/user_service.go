package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// UserService manages the people issues are assigned to and comments are
// attributed to. Users are never deleted.
type UserService interface {
	List(ctx context.Context, opts model.ListOptions) ([]*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, name, email string) (*model.User, error)
}

type userServiceImpl struct {
	repo       repository.UserRepository
	pagination Pagination
}

// NewUserService creates a UserService backed by the given repository.
func NewUserService(repo repository.UserRepository, pagination Pagination) UserService {
	return &userServiceImpl{repo: repo, pagination: pagination}
}

func (s *userServiceImpl) List(ctx context.Context, opts model.ListOptions) ([]*model.User, error) {
	opts.Offset, opts.Limit = s.pagination.clamp(opts.Offset, opts.Limit)
	users, err := s.repo.List(ctx, opts)
	return users, classify(err)
}

func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	return user, classify(err)
}

// Create requires a name and a syntactically valid email address. A taken
// email is ErrInvalidArgument.
func (s *userServiceImpl) Create(ctx context.Context, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, invalidArgument("invalid email %q", email)
	}

	user := &model.User{Name: name, Email: email}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidArgument("email %q is already registered", email)
		}
		return nil, classify(err)
	}
	return user, nil
}
