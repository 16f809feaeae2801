package repository

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
)

// DB is the liveness check used by the health endpoint.
type DB interface {
	Ping(ctx context.Context) error
}

// IssueRepository covers the read-only issue queries that need no transaction.
type IssueRepository interface {
	List(ctx context.Context, opts model.IssueListOptions) ([]*model.Issue, error)
	// GetByID returns the issue with its assignee and labels, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Issue, error)
	// Timeline returns the issue's history, newest first.
	Timeline(ctx context.Context, issueID int64) ([]*model.IssueHistory, error)
}

// LabelRepository persists labels.
type LabelRepository interface {
	List(ctx context.Context) ([]*model.Label, error)
	// Create returns ErrDuplicate when the name is taken.
	Create(ctx context.Context, label *model.Label) error
}

// UserRepository persists users.
type UserRepository interface {
	List(ctx context.Context, opts model.ListOptions) ([]*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *model.User) error
}

type CommentRepository interface {
	// List returns comments across all issues, newest first.
	List(ctx context.Context, opts model.ListOptions) ([]*model.Comment, error)
	// ListByIssueID returns an issue's comments, oldest first.
	ListByIssueID(ctx context.Context, issueID int64) ([]*model.Comment, error)
}

// ReportRepository runs the read-only aggregate queries behind /api/reports.
type ReportRepository interface {
	TopAssignees(ctx context.Context) ([]model.AssigneeCount, error)
	ResolutionStats(ctx context.Context) (model.ResolutionStats, error)
}
