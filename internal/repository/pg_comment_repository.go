package repository

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCommentRepository is the PostgreSQL implementation of CommentRepository.
// Both listings join users so every comment carries its author.
type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

var _ CommentRepository = (*PgCommentRepository)(nil)

const commentSelect = `
	SELECT c.id, c.issue_id, c.author_id, c.body, c.created_at, u.id, u.name, u.email
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (r *PgCommentRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.Comment, error) {
	return r.query(ctx, commentSelect+` ORDER BY c.created_at DESC, c.id DESC LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset)
}

func (r *PgCommentRepository) ListByIssueID(ctx context.Context, issueID int64) ([]*model.Comment, error) {
	return r.query(ctx, commentSelect+` WHERE c.issue_id = $1 ORDER BY c.created_at, c.id`, issueID)
}

func (r *PgCommentRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Comment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var c model.Comment
		var u model.User
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.Body, &c.CreatedAt, &u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		c.Author = &u
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
