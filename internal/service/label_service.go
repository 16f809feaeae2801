package service

import (
	"context"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// LabelService manages the label catalogue.
type LabelService interface {
	List(ctx context.Context) ([]*model.Label, error)
	Create(ctx context.Context, name string) (*model.Label, error)
}

type labelServiceImpl struct {
	repo repository.LabelRepository
}

// NewLabelService creates a LabelService backed by the given repository.
func NewLabelService(repo repository.LabelRepository) LabelService {
	return &labelServiceImpl{repo: repo}
}

func (s *labelServiceImpl) List(ctx context.Context) ([]*model.Label, error) {
	labels, err := s.repo.List(ctx)
	return labels, classify(err)
}

// Create trims the name and rejects blanks. A taken name is repository.ErrDuplicate.
func (s *labelServiceImpl) Create(ctx context.Context, name string) (*model.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("label name is required")
	}
	label := &model.Label{Name: name}
	if err := s.repo.Create(ctx, label); err != nil {
		return nil, classify(err)
	}
	return label, nil
}
