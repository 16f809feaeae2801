package repository

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
)

// Tx is the unit of work every mutating operation runs in. All writes made
// through one Tx commit or roll back together.
type Tx interface {
	// GetIssue returns the issue row without labels or assignee, or ErrNotFound.
	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	// LockIssues loads the issues whose ids are in ids, holding row locks until
	// the transaction ends. Unknown ids are skipped.
	LockIssues(ctx context.Context, ids []int64) ([]*model.Issue, error)
	// InsertIssue stores a new issue at version 1 and fills ID and Version.
	// A zero CreatedAt is filled with the store's current time.
	InsertIssue(ctx context.Context, issue *model.Issue) error
	// UpdateIssue writes title, description, status, assignee and resolved_at
	// and bumps the version by one, but only while the stored version still
	// equals expectedVersion. Otherwise it returns ErrVersionConflict.
	// On success issue.Version holds the new version.
	UpdateIssue(ctx context.Context, issue *model.Issue, expectedVersion int) error
	// SetIssueStatus changes only the status column. The version is untouched.
	SetIssueStatus(ctx context.Context, id int64, status string) error
	UserExists(ctx context.Context, id int64) (bool, error)
	// GetLabelsByIDs resolves ids to labels, silently skipping unknown ids.
	GetLabelsByIDs(ctx context.Context, ids []int64) ([]model.Label, error)
	// ReplaceIssueLabels makes labelIDs the issue's complete label set.
	ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) error
	InsertComment(ctx context.Context, comment *model.Comment) error
	// AppendHistory inserts one immutable history row and fills ID and CreatedAt.
	AppendHistory(ctx context.Context, entry *model.IssueHistory) error
}

// TxRunner opens a transaction, hands it to fn, and commits when fn returns
// nil. Any error or panic from fn rolls the transaction back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
