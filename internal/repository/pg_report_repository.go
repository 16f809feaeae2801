package repository

import (
	"context"
	"time"

	"github.com/issuetracker/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgReportRepository is the PostgreSQL implementation of ReportRepository.
type PgReportRepository struct {
	pool *pgxpool.Pool
}

func NewPgReportRepository(pool *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{pool: pool}
}

var _ ReportRepository = (*PgReportRepository)(nil)

// TopAssignees counts issues per assignee, unassigned included, largest first.
func (r *PgReportRepository) TopAssignees(ctx context.Context) ([]model.AssigneeCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT assignee_id, COUNT(*) AS n
		 FROM issues
		 GROUP BY assignee_id
		 ORDER BY n DESC, assignee_id NULLS LAST`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.AssigneeCount
	for rows.Next() {
		var c model.AssigneeCount
		if err := rows.Scan(&c.AssigneeID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ResolutionStats averages resolved_at - created_at over resolved issues.
// AVG over zero rows is NULL, which leaves Average nil.
func (r *PgReportRepository) ResolutionStats(ctx context.Context) (model.ResolutionStats, error) {
	var stats model.ResolutionStats
	var avgSeconds *float64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)))::float8
		 FROM issues
		 WHERE resolved_at IS NOT NULL`,
	).Scan(&stats.ResolvedCount, &avgSeconds)
	if err != nil {
		return stats, err
	}
	if avgSeconds != nil {
		d := time.Duration(*avgSeconds * float64(time.Second))
		stats.Average = &d
	}
	return stats, nil
}
