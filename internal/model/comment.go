package model

import "time"

// Comment is a note left on an issue. Body is never blank.
type Comment struct {
	ID        int64     `json:"id"`
	IssueID   int64     `json:"issue_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	// Author is populated by read queries that join users.
	Author *User `json:"author,omitempty"`
}
