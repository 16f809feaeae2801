package service

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
)

// IssueService is the business logic for issues and everything hanging off
// them. Every mutating method runs in exactly one transaction.
type IssueService interface {
	// Create stores a new issue at version 1 with one "created" history row.
	Create(ctx context.Context, in model.NewIssue) (*model.Issue, error)
	List(ctx context.Context, opts model.IssueListOptions) ([]*model.Issue, error)
	GetByID(ctx context.Context, id int64) (*model.Issue, error)
	// Timeline returns the issue's history, newest first.
	Timeline(ctx context.Context, id int64) ([]*model.IssueHistory, error)

	// Update applies patch if expectedVersion is still the stored version.
	// It returns repository.ErrVersionConflict otherwise. A patch that changes
	// nothing returns the issue unchanged without bumping the version.
	Update(ctx context.Context, id int64, patch model.IssuePatch, expectedVersion int) (*model.Issue, error)
	// SetLabels replaces the label set. Unknown label ids are dropped.
	// The issue version is not bumped.
	SetLabels(ctx context.Context, id int64, labelIDs []int64) ([]model.Label, error)
	// AddComment needs no version token and does not bump the version.
	AddComment(ctx context.Context, issueID, authorID int64, body string) (*model.Comment, error)
	ListComments(ctx context.Context, issueID int64) ([]*model.Comment, error)
	// BulkSetStatus changes the status of every found issue in one
	// transaction. Missing ids are ignored. Versions and resolved_at are
	// left alone.
	BulkSetStatus(ctx context.Context, ids []int64, status string) (model.BulkStatusResult, error)
	// Import creates one issue per valid row. Invalid rows are reported, not
	// fatal; a store failure fails the whole import.
	Import(ctx context.Context, rows []model.ImportRow) (model.ImportResult, error)
}
