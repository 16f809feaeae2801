package model

import "time"

// Issue statuses. The column is free-form text, but these are the values
// the API assigns.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// Issue is the central tracked entity. Version is the optimistic-lock token:
// it starts at 1 and grows by exactly one for every accepted update.
type Issue struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	AssigneeID  *int64     `json:"assignee_id"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`

	// Populated on detail reads only.
	Assignee *User   `json:"assignee,omitempty"`
	Labels   []Label `json:"labels"`
}

// NewIssue carries the fields accepted on creation.
type NewIssue struct {
	Title       string
	Description *string
	Status      string
	AssigneeID  *int64
}

// IssuePatch is a partial update. A nil Title or Status, or an unset Optional,
// leaves the field as it is.
type IssuePatch struct {
	Title       *string
	Description Optional[string]
	Status      *string
	AssigneeID  Optional[int64]
}

// IsEmpty reports whether the patch names no field at all.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil && !p.AssigneeID.Set
}

// IssueListOptions filters and paginates issue listings.
type IssueListOptions struct {
	// Status filters by exact status. Empty returns every issue.
	Status string
	Offset int
	Limit  int
}

// ListOptions paginates simple listings.
type ListOptions struct {
	Offset int
	Limit  int
}

// BulkStatusResult summarises a bulk status change.
type BulkStatusResult struct {
	// Updated counts issues whose status actually changed.
	Updated int `json:"updated"`
	// Matched counts issues that were found for the requested ids.
	Matched int `json:"matched"`
}
