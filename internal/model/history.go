package model

import "time"

// History event types.
const (
	EventCreated       = "created"
	EventUpdate        = "update"
	EventComment       = "comment"
	EventLabelsUpdated = "labels_updated"
	EventStatusChange  = "status_change"
)

// IssueHistory is one append-only audit record attached to an issue.
type IssueHistory struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	EventType string    `json:"event_type"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
