package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
)

// IssueServiceOptions carries the optional collaborators of IssueServiceImpl.
type IssueServiceOptions struct {
	Observer   Observer
	Pagination Pagination
	// Now defaults to time.Now. Tests pin it.
	Now func() time.Time
}

// IssueServiceImpl is the IssueService implementation.
type IssueServiceImpl struct {
	store      repository.TxRunner
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	observer   Observer
	pagination Pagination
	now        func() time.Time
}

// NewIssueService creates an IssueService. store runs the transactional
// paths; issues and comments serve the plain reads.
func NewIssueService(store repository.TxRunner, issues repository.IssueRepository, comments repository.CommentRepository, opts IssueServiceOptions) IssueService {
	s := &IssueServiceImpl{
		store:      store,
		issues:     issues,
		comments:   comments,
		observer:   opts.Observer,
		pagination: opts.Pagination,
		now:        opts.Now,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create validates the input, inserts the issue and its "created" history
// row in one transaction. Status defaults to open.
func (s *IssueServiceImpl) Create(ctx context.Context, in model.NewIssue) (*model.Issue, error) {
	issue, err := s.create(ctx, in)
	s.observer.MutationCompleted(OpCreateIssue, outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.observer.HistoryAppended(model.EventCreated, 1)
	return issue, nil
}

func (s *IssueServiceImpl) create(ctx context.Context, in model.NewIssue) (*model.Issue, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidArgument("title is required")
	}
	issue := &model.Issue{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   s.now().UTC(),
		Labels:      []model.Label{},
	}
	if strings.TrimSpace(issue.Status) == "" {
		issue.Status = model.StatusOpen
	}

	err := s.store.RunInTx(ctx, func(tx repository.Tx) error {
		if issue.AssigneeID != nil {
			if err := requireUser(ctx, tx, *issue.AssigneeID); err != nil {
				return err
			}
		}
		if err := tx.InsertIssue(ctx, issue); err != nil {
			return err
		}
		_, err := appendHistory(ctx, tx, issue.ID, model.EventCreated, "Issue created")
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return issue, nil
}

// List returns issues newest first with the limit clamped to the configured bounds.
func (s *IssueServiceImpl) List(ctx context.Context, opts model.IssueListOptions) ([]*model.Issue, error) {
	opts.Offset, opts.Limit = s.pagination.clamp(opts.Offset, opts.Limit)
	issues, err := s.issues.List(ctx, opts)
	return issues, classify(err)
}

func (s *IssueServiceImpl) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	return issue, classify(err)
}

// Timeline returns ErrNotFound for an unknown issue rather than an empty list.
func (s *IssueServiceImpl) Timeline(ctx context.Context, id int64) ([]*model.IssueHistory, error) {
	history, err := s.issues.Timeline(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if len(history) == 0 {
		if _, err := s.issues.GetByID(ctx, id); err != nil {
			return nil, classify(err)
		}
	}
	return history, nil
}

// requireUser returns ErrNotFound when id names no user.
func requireUser(ctx context.Context, tx repository.Tx, id int64) error {
	ok, err := tx.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
