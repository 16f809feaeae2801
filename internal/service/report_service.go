package service

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// ReportService is the read-only reporting engine.
type ReportService interface {
	// TopAssignees counts issues per assignee, largest first. The group with
	// a nil AssigneeID holds unassigned issues.
	TopAssignees(ctx context.Context) ([]model.AssigneeCount, error)
	// AverageResolutionTime averages resolved_at - created_at over resolved
	// issues. With none resolved, Average is nil and no error is returned.
	AverageResolutionTime(ctx context.Context) (model.ResolutionStats, error)
}

type reportServiceImpl struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) ReportService {
	return &reportServiceImpl{repo: repo}
}

func (s *reportServiceImpl) TopAssignees(ctx context.Context) ([]model.AssigneeCount, error) {
	counts, err := s.repo.TopAssignees(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if counts == nil {
		counts = []model.AssigneeCount{}
	}
	return counts, nil
}

func (s *reportServiceImpl) AverageResolutionTime(ctx context.Context) (model.ResolutionStats, error) {
	stats, err := s.repo.ResolutionStats(ctx)
	if err != nil {
		return model.ResolutionStats{}, classify(err)
	}
	if stats.ResolvedCount == 0 {
		stats.Average = nil
	}
	return stats, nil
}
