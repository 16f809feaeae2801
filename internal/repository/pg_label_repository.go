package repository

import (
	"context"

	"github.com/issuetracker/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLabelRepository is the PostgreSQL implementation of LabelRepository.
type PgLabelRepository struct {
	pool *pgxpool.Pool
}

func NewPgLabelRepository(pool *pgxpool.Pool) *PgLabelRepository {
	return &PgLabelRepository{pool: pool}
}

var _ LabelRepository = (*PgLabelRepository)(nil)

func (r *PgLabelRepository) List(ctx context.Context) ([]*model.Label, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM labels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*model.Label
	for rows.Next() {
		var l model.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, &l)
	}
	return labels, rows.Err()
}

func (r *PgLabelRepository) Create(ctx context.Context, label *model.Label) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO labels (name) VALUES ($1) RETURNING id`,
		label.Name,
	).Scan(&label.ID)
	return mapUniqueViolation(err)
}
