package service

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// appendHistory records one audit row inside tx. It is the only writer of
// issue_history; rows are never updated afterwards.
func appendHistory(ctx context.Context, tx repository.Tx, issueID int64, eventType, details string) (*model.IssueHistory, error) {
	entry := &model.IssueHistory{
		IssueID:   issueID,
		EventType: eventType,
		Details:   &details,
	}
	if err := tx.AppendHistory(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
