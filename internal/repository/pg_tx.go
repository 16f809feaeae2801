package repository

import (
	"context"
	"errors"
	"time"

	"github.com/issuetracker/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL implementation of TxRunner.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore backed by the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

var _ TxRunner = (*PgStore)(nil)

// RunInTx runs fn inside a READ COMMITTED transaction. The deferred rollback
// covers early returns and panics; after a successful commit it is a no-op.
func (s *PgStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

const issueSelectCols = `id, title, description, status, assignee_id, version, created_at, resolved_at`

func scanIssue(scan func(...any) error) (*model.Issue, error) {
	var i model.Issue
	if err := scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.AssigneeID, &i.Version, &i.CreatedAt, &i.ResolvedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func (t *pgTx) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+issueSelectCols+` FROM issues WHERE id = $1`, id)
	issue, err := scanIssue(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return issue, err
}

func (t *pgTx) LockIssues(ctx context.Context, ids []int64) ([]*model.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := t.tx.Query(ctx,
		`SELECT `+issueSelectCols+` FROM issues WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		ids,
	)
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
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// InsertIssue keeps a caller-set CreatedAt so created_at and resolved_at come
// from the same clock; a zero CreatedAt falls back to NOW().
func (t *pgTx) InsertIssue(ctx context.Context, issue *model.Issue) error {
	var createdAt *time.Time
	if !issue.CreatedAt.IsZero() {
		createdAt = &issue.CreatedAt
	}
	return t.tx.QueryRow(ctx,
		`INSERT INTO issues (title, description, status, assignee_id, version, created_at)
		 VALUES ($1, $2, $3, $4, 1, COALESCE($5::timestamptz, NOW()))
		 RETURNING id, version, created_at`,
		issue.Title, issue.Description, issue.Status, issue.AssigneeID, createdAt,
	).Scan(&issue.ID, &issue.Version, &issue.CreatedAt)
}

// UpdateIssue is a compare-and-swap on the version column: a writer that
// committed first moves the version on, so this statement matches no row.
func (t *pgTx) UpdateIssue(ctx context.Context, issue *model.Issue, expectedVersion int) error {
	err := t.tx.QueryRow(ctx,
		`UPDATE issues
		 SET title = $1, description = $2, status = $3, assignee_id = $4, resolved_at = $5,
		     version = version + 1
		 WHERE id = $6 AND version = $7
		 RETURNING version`,
		issue.Title, issue.Description, issue.Status, issue.AssigneeID, issue.ResolvedAt,
		issue.ID, expectedVersion,
	).Scan(&issue.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	return err
}

func (t *pgTx) SetIssueStatus(ctx context.Context, id int64, status string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE issues SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (t *pgTx) GetLabelsByIDs(ctx context.Context, ids []int64) ([]model.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := t.tx.Query(ctx, `SELECT id, name FROM labels WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []model.Label
	for rows.Next() {
		var l model.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (t *pgTx) ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM issue_labels WHERE issue_id = $1`, issueID); err != nil {
		return err
	}
	if len(labelIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO issue_labels (issue_id, label_id)
		 SELECT $1, unnest($2::bigint[])
		 ON CONFLICT DO NOTHING`,
		issueID, labelIDs,
	)
	return err
}

func (t *pgTx) InsertComment(ctx context.Context, comment *model.Comment) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO comments (issue_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		comment.IssueID, comment.AuthorID, comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (t *pgTx) AppendHistory(ctx context.Context, entry *model.IssueHistory) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO issue_history (issue_id, event_type, details)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		entry.IssueID, entry.EventType, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}
