package service

import (
	"errors"

	"github.com/issuetracker/backend/internal/repository"
)

// Mutation operation names reported to the Observer.
const (
	OpCreateIssue  = "create_issue"
	OpUpdateIssue  = "update_issue"
	OpSetLabels    = "set_labels"
	OpAddComment   = "add_comment"
	OpBulkStatus   = "bulk_status"
	OpImportIssues = "import_issues"
)

// Mutation outcomes reported to the Observer.
const (
	OutcomeAccepted = "accepted"
	OutcomeNoop     = "noop"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Observer is told how each mutation ended and how many history rows a
// committed transaction appended. internal/metrics provides the Prometheus one.
type Observer interface {
	MutationCompleted(op, outcome string)
	HistoryAppended(eventType string, n int)
}

type nopObserver struct{}

func (nopObserver) MutationCompleted(string, string) {}
func (nopObserver) HistoryAppended(string, int)      {}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, repository.ErrVersionConflict):
		return OutcomeConflict
	case errors.Is(err, repository.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, repository.ErrDuplicate):
		return OutcomeInvalid
	default:
		return OutcomeFailed
	}
}
