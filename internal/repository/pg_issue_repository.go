package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/issuetracker/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgIssueRepository is the PostgreSQL implementation of IssueRepository.
type PgIssueRepository struct {
	pool *pgxpool.Pool
}

// NewPgIssueRepository creates a PgIssueRepository backed by the given pool.
func NewPgIssueRepository(pool *pgxpool.Pool) *PgIssueRepository {
	return &PgIssueRepository{pool: pool}
}

var _ IssueRepository = (*PgIssueRepository)(nil)

// Ping satisfies DB for the health endpoint.
func (r *PgIssueRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// buildIssueListQuery returns the listing SQL and its arguments. An empty
// status matches every issue.
func buildIssueListQuery(opts model.IssueListOptions) (string, []any) {
	var conditions []string
	var args []any

	if status := strings.TrimSpace(opts.Status); status != "" {
		args = append(args, status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, opts.Limit, opts.Offset)
	query := `SELECT ` + issueSelectCols + ` FROM issues` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))
	return query, args
}

// List returns issues newest first, filtered by status when one is given.
func (r *PgIssueRepository) List(ctx context.Context, opts model.IssueListOptions) ([]*model.Issue, error) {
	query, args := buildIssueListQuery(opts)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*model.Issue
	for rows.Next() {
		issue, err := scanIssue(rows.Scan)
		if err != nil {
			return nil, err
		}
		issue.Labels = []model.Label{}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// GetByID returns the issue together with its assignee and label set.
func (r *PgIssueRepository) GetByID(ctx context.Context, id int64) (*model.Issue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+issueSelectCols+` FROM issues WHERE id = $1`, id)
	issue, err := scanIssue(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if issue.AssigneeID != nil {
		var u model.User
		err := r.pool.QueryRow(ctx,
			`SELECT id, name, email FROM users WHERE id = $1`, *issue.AssigneeID,
		).Scan(&u.ID, &u.Name, &u.Email)
		if err == nil {
			issue.Assignee = &u
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT l.id, l.name
		 FROM labels l
		 JOIN issue_labels il ON il.label_id = l.id
		 WHERE il.issue_id = $1
		 ORDER BY l.name`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issue.Labels = []model.Label{}
	for rows.Next() {
		var l model.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		issue.Labels = append(issue.Labels, l)
	}
	return issue, rows.Err()
}

// Timeline returns the issue's history rows newest first. The id tiebreak
// keeps rows written in the same transaction in reverse insertion order.
func (r *PgIssueRepository) Timeline(ctx context.Context, issueID int64) ([]*model.IssueHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, issue_id, event_type, details, created_at
		 FROM issue_history
		 WHERE issue_id = $1
		 ORDER BY created_at DESC, id DESC`,
		issueID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*model.IssueHistory
	for rows.Next() {
		var h model.IssueHistory
		if err := rows.Scan(&h.ID, &h.IssueID, &h.EventType, &h.Details, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}
