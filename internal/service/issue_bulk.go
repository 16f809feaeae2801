package service

import (
	"context"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// BulkSetStatus moves every found issue to status in a single transaction,
// appending one "status_change" row per issue that actually changed. Any
// failure rolls back the whole batch.
//
// Unlike Update this path neither bumps versions nor sets resolved_at.
func (s *IssueServiceImpl) BulkSetStatus(ctx context.Context, ids []int64, status string) (model.BulkStatusResult, error) {
	var result model.BulkStatusResult
	if strings.TrimSpace(status) == "" {
		err := invalidArgument("status is required")
		s.observer.MutationCompleted(OpBulkStatus, outcomeOf(err))
		return result, err
	}

	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		result = model.BulkStatusResult{}
		issues, err := tx.LockIssues(ctx, uniqueIDs(ids))
		if err != nil {
			return err
		}
		result.Matched = len(issues)

		details := "Bulk status update to " + status
		for _, issue := range issues {
			if issue.Status == status {
				continue
			}
			if err := tx.SetIssueStatus(ctx, issue.ID, status); err != nil {
				return err
			}
			if _, err := appendHistory(ctx, tx, issue.ID, model.EventStatusChange, details); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	err = classify(err)
	s.observer.MutationCompleted(OpBulkStatus, outcomeOf(err))
	if err != nil {
		return model.BulkStatusResult{}, err
	}
	s.observer.HistoryAppended(model.EventStatusChange, result.Updated)
	return result, nil
}
