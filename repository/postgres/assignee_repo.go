package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type assigneeRepository struct {
	pool *pgxpool.Pool
}

// NewAssigneeRepository returns a Postgres-backed AssigneeRepository.
func NewAssigneeRepository(pool *pgxpool.Pool) repository.AssigneeRepository {
	return &assigneeRepository{pool: pool}
}

// List orders rows by assignment time so driver columns come out in a stable order.
func (r *assigneeRepository) List(ctx context.Context) ([]domain.TaskAssignee, error) {
	const query = `
	SELECT id, task_id, driver_id, is_lead, assigned_at
	FROM task_assignees
	ORDER BY assigned_at, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	return collectAssignees(rows)
}

func (r *assigneeRepository) ListByTask(ctx context.Context, taskID string) ([]domain.TaskAssignee, error) {
	const query = `
	SELECT id, task_id, driver_id, is_lead, assigned_at
	FROM task_assignees
	WHERE task_id = $1
	ORDER BY assigned_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, mapError(err)
	}
	return collectAssignees(rows)
}

func (r *assigneeRepository) Replace(ctx context.Context, taskID string, assignees []domain.TaskAssignee) error {
	return mapError(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return replaceAssignees(ctx, tx, taskID, assignees)
	}))
}

// replaceAssignees rewrites the rows of taskID inside tx.
func replaceAssignees(ctx context.Context, tx pgx.Tx, taskID string, assignees []domain.TaskAssignee) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	if len(assignees) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range assignees {
		a := &assignees[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.AssignedAt.IsZero() {
			a.AssignedAt = time.Now().UTC()
		}
		a.TaskID = taskID
		batch.Queue(`
		INSERT INTO task_assignees (id, task_id, driver_id, is_lead, assigned_at)
		VALUES ($1, $2, $3, $4, $5)`,
			a.ID, taskID, a.DriverID, a.IsLead, a.AssignedAt)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func collectAssignees(rows pgx.Rows) ([]domain.TaskAssignee, error) {
	defer rows.Close()
	out := make([]domain.TaskAssignee, 0)
	for rows.Next() {
		var a domain.TaskAssignee
		if err := rows.Scan(&a.ID, &a.TaskID, &a.DriverID, &a.IsLead, &a.AssignedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err())
}
