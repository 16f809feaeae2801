package service

import (
	"context"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// AddComment stores a comment and its "comment" history row together. The
// issue is checked first, so a blank body on a missing issue is NotFound.
func (s *IssueServiceImpl) AddComment(ctx context.Context, issueID, authorID int64, body string) (*model.Comment, error) {
	var comment *model.Comment
	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIssue(ctx, issueID); err != nil {
			return err
		}
		if strings.TrimSpace(body) == "" {
			return invalidArgument("comment body cannot be empty")
		}
		if err := requireUser(ctx, tx, authorID); err != nil {
			return err
		}

		comment = &model.Comment{IssueID: issueID, AuthorID: authorID, Body: body}
		if err := tx.InsertComment(ctx, comment); err != nil {
			return err
		}
		_, err := appendHistory(ctx, tx, issueID, model.EventComment, "Comment added")
		return err
	})
	err = classify(err)
	s.observer.MutationCompleted(OpAddComment, outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.observer.HistoryAppended(model.EventComment, 1)
	return comment, nil
}

// ListComments returns the issue's comments oldest first.
func (s *IssueServiceImpl) ListComments(ctx context.Context, issueID int64) ([]*model.Comment, error) {
	comments, err := s.comments.ListByIssueID(ctx, issueID)
	if err != nil {
		return nil, classify(err)
	}
	if len(comments) == 0 {
		if _, err := s.issues.GetByID(ctx, issueID); err != nil {
			return nil, classify(err)
		}
	}
	return comments, nil
}
