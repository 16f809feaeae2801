package model

import "time"

// AssigneeCount is one row of the top-assignees report. A nil AssigneeID
// groups unassigned issues.
type AssigneeCount struct {
	AssigneeID *int64 `json:"assignee_id"`
	Count      int    `json:"count"`
}

// ResolutionStats is the mean time from creation to resolution over resolved
// issues. Average is nil when no issue has been resolved yet.
type ResolutionStats struct {
	Average       *time.Duration
	ResolvedCount int
}
