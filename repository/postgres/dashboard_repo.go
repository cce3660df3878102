package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/repository"
)

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates the aggregate queries behind the admin dashboard.
func NewDashboardRepository(pool *pgxpool.Pool) repository.DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) CountCreated(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE created_at >= $1 AND created_at < $2`
	return r.count(ctx, query, from, to)
}

func (r *dashboardRepository) CountCompleted(ctx context.Context, from, to time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM tasks
	WHERE status = 'completed' AND updated_at >= $1 AND updated_at < $2`
	return r.count(ctx, query, from, to)
}

func (r *dashboardRepository) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM tasks
	WHERE status <> 'completed' AND estimated_end IS NOT NULL AND estimated_end < $1`
	return r.count(ctx, query, asOf)
}

func (r *dashboardRepository) CountOnTime(ctx context.Context, from, to time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FILTER (WHERE estimated_end IS NOT NULL AND updated_at <= estimated_end)
	FROM tasks
	WHERE status = 'completed' AND updated_at >= $1 AND updated_at < $2`
	return r.count(ctx, query, from, to)
}

func (r *dashboardRepository) DailyCounts(ctx context.Context, from, to time.Time, tz string) ([]repository.DailyCount, error) {
	const query = `
	SELECT day, COUNT(*) FILTER (WHERE kind = 'created'), COUNT(*) FILTER (WHERE kind = 'completed')
	FROM (
		SELECT to_char(created_at AT TIME ZONE $3, 'YYYY-MM-DD') AS day, 'created' AS kind
		FROM tasks
		WHERE created_at >= $1 AND created_at < $2
		UNION ALL
		SELECT to_char(updated_at AT TIME ZONE $3, 'YYYY-MM-DD'), 'completed'
		FROM tasks
		WHERE status = 'completed' AND updated_at >= $1 AND updated_at < $2
	) events
	GROUP BY day
	ORDER BY day`
	rows, err := r.pool.Query(ctx, query, from, to, tz)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]repository.DailyCount, 0)
	for rows.Next() {
		var d repository.DailyCount
		if err := rows.Scan(&d.Date, &d.Created, &d.Completed); err != nil {
			return nil, mapError(err)
		}
		out = append(out, d)
	}
	return out, mapError(rows.Err())
}

func (r *dashboardRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
