package service

import (
	"fmt"
	"strconv"

	"github.com/issuetracker/backend/internal/model"
)

// issueField is one user-editable issue column. apply copies the patched
// value onto the issue when the patch names the field and the value differs,
// returning the old and new values rendered for the history entry.
type issueField struct {
	name  string
	apply func(issue *model.Issue, patch model.IssuePatch) (before, after string, changed bool)
}

// mutableIssueFields lists the fields in the order they appear in history
// details.
var mutableIssueFields = []issueField{
	{
		name: "title",
		apply: func(issue *model.Issue, patch model.IssuePatch) (string, string, bool) {
			if patch.Title == nil || *patch.Title == issue.Title {
				return "", "", false
			}
			before := issue.Title
			issue.Title = *patch.Title
			return before, issue.Title, true
		},
	},
	{
		name: "description",
		apply: func(issue *model.Issue, patch model.IssuePatch) (string, string, bool) {
			// NULL and "" read the same in history, so moving between them
			// is not a change.
			if !patch.Description.Set || formatText(issue.Description) == formatText(patch.Description.Value) {
				return "", "", false
			}
			before := formatText(issue.Description)
			issue.Description = clonePtr(patch.Description.Value)
			return before, formatText(issue.Description), true
		},
	},
	{
		name: "status",
		apply: func(issue *model.Issue, patch model.IssuePatch) (string, string, bool) {
			if patch.Status == nil || *patch.Status == issue.Status {
				return "", "", false
			}
			before := issue.Status
			issue.Status = *patch.Status
			return before, issue.Status, true
		},
	},
	{
		name: "assignee_id",
		apply: func(issue *model.Issue, patch model.IssuePatch) (string, string, bool) {
			if !patch.AssigneeID.Set || equalPtr(issue.AssigneeID, patch.AssigneeID.Value) {
				return "", "", false
			}
			before := formatID(issue.AssigneeID)
			issue.AssigneeID = clonePtr(patch.AssigneeID.Value)
			return before, formatID(issue.AssigneeID), true
		},
	},
}

// applyPatch mutates issue in place and returns one fragment per changed
// field. An empty result means the patch was a no-op.
func applyPatch(issue *model.Issue, patch model.IssuePatch) []string {
	var changes []string
	for _, f := range mutableIssueFields {
		if before, after, ok := f.apply(issue, patch); ok {
			changes = append(changes, fmt.Sprintf("%s changed from '%s' to '%s'", f.name, before, after))
		}
	}
	return changes
}

// formatText renders NULL as empty text.
func formatText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
