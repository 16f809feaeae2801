package service

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// CommentService lists comments across all issues. Creating comments goes
// through IssueService.AddComment so the history row is written with it.
type CommentService interface {
	List(ctx context.Context, opts model.ListOptions) ([]*model.Comment, error)
}

type commentServiceImpl struct {
	repo       repository.CommentRepository
	pagination Pagination
}

func NewCommentService(repo repository.CommentRepository, pagination Pagination) CommentService {
	return &commentServiceImpl{repo: repo, pagination: pagination}
}

func (s *commentServiceImpl) List(ctx context.Context, opts model.ListOptions) ([]*model.Comment, error) {
	opts.Offset, opts.Limit = s.pagination.clamp(opts.Offset, opts.Limit)
	comments, err := s.repo.List(ctx, opts)
	return comments, classify(err)
}
