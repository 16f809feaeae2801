package service

import (
	"context"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// Update is the optimistic-locking write path. Inside one transaction it
// checks expectedVersion, diffs the patch field by field, and when anything
// changed writes the fields with a version-guarded UPDATE plus one "update"
// history row. A writer that commits between our read and our write makes
// the guarded UPDATE match nothing, which surfaces as ErrVersionConflict.
func (s *IssueServiceImpl) Update(ctx context.Context, id int64, patch model.IssuePatch, expectedVersion int) (*model.Issue, error) {
	issue, changed, err := s.update(ctx, id, patch, expectedVersion)
	outcome := outcomeOf(err)
	if err == nil && !changed {
		outcome = OutcomeNoop
	}
	s.observer.MutationCompleted(OpUpdateIssue, outcome)
	if err != nil {
		return nil, err
	}
	if changed {
		s.observer.HistoryAppended(model.EventUpdate, 1)
	}
	return s.detail(ctx, issue), nil
}

// detail reloads a committed issue with its assignee and labels. The write
// has already committed, so a failed reload falls back to the row as written.
func (s *IssueServiceImpl) detail(ctx context.Context, issue *model.Issue) *model.Issue {
	full, err := s.issues.GetByID(ctx, issue.ID)
	if err != nil {
		if issue.Labels == nil {
			issue.Labels = []model.Label{}
		}
		return issue
	}
	return full
}

func (s *IssueServiceImpl) update(ctx context.Context, id int64, patch model.IssuePatch, expectedVersion int) (*model.Issue, bool, error) {
	if err := validatePatch(patch); err != nil {
		return nil, false, err
	}

	var result *model.Issue
	var changed bool
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		issue, err := tx.GetIssue(ctx, id)
		if err != nil {
			return err
		}
		if issue.Version != expectedVersion {
			return repository.ErrVersionConflict
		}

		if a := patch.AssigneeID; a.Set && a.Value != nil && !equalPtr(issue.AssigneeID, a.Value) {
			if err := requireUser(ctx, tx, *a.Value); err != nil {
				return err
			}
		}

		previousStatus := issue.Status
		changes := applyPatch(issue, patch)
		if len(changes) == 0 {
			result = issue
			return nil
		}

		if issue.Status == model.StatusClosed && previousStatus != model.StatusClosed {
			resolvedAt := s.now().UTC()
			issue.ResolvedAt = &resolvedAt
		}
		if err := tx.UpdateIssue(ctx, issue, expectedVersion); err != nil {
			return err
		}
		if _, err := appendHistory(ctx, tx, issue.ID, model.EventUpdate, strings.Join(changes, ", ")); err != nil {
			return err
		}
		result = issue
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, classify(err)
	}
	return result, changed, nil
}

// validatePatch rejects values that would break the issue row: a title or
// status may be changed but never blanked.
func validatePatch(patch model.IssuePatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return invalidArgument("title must not be empty")
	}
	if patch.Status != nil && strings.TrimSpace(*patch.Status) == "" {
		return invalidArgument("status must not be empty")
	}
	return nil
}
