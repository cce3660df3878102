package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

const taskColumns = `t.id, t.title, t.type, t.priority, t.status, t.estimated_start, t.estimated_end,
	t.address, COALESCE(t.details, ''), t.client_id, t.vehicle_id, t.created_by, t.updated_by, t.created_at, t.updated_at`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

// List returns tasks newest first. Board snapshots ask for Limit < 0 to read every task.
func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t
	WHERE ($1 = '' OR t.status = $1)
	  AND ($2 = '' OR EXISTS (
		SELECT 1 FROM task_assignees a WHERE a.task_id = t.id AND a.driver_id::text = $2))
	ORDER BY t.created_at DESC, t.id
	LIMIT $3 OFFSET $4`

	var limit interface{}
	if filter.Limit >= 0 {
		limit = clampLimit(filter.Limit)
	}
	rows, err := r.pool.Query(ctx, query, filter.Status, filter.DriverID, limit, filter.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, mapError(err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, mapError(rows.Err())
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := insertTask(ctx, r.pool, task); err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

// CreateWithAssignees inserts task and its assignment rows in one transaction.
func (r *taskRepository) CreateWithAssignees(ctx context.Context, task *domain.Task, rows []domain.TaskAssignee) (*domain.Task, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertTask(ctx, tx, task); err != nil {
			return err
		}
		return replaceAssignees(ctx, tx, task.ID, rows)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return mapError(updateTask(ctx, r.pool, task))
}

// UpdateWithAssignees updates task and replaces its assignment rows in one transaction.
func (r *taskRepository) UpdateWithAssignees(ctx context.Context, task *domain.Task, rows []domain.TaskAssignee) error {
	return mapError(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateTask(ctx, tx, task); err != nil {
			return err
		}
		return replaceAssignees(ctx, tx, task.ID, rows)
	}))
}

func insertTask(ctx context.Context, q querier, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, type, priority, status, estimated_start, estimated_end, address, details,
		client_id, vehicle_id, created_by, updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $12)
	RETURNING created_at, updated_at
	`

	if err := q.QueryRow(ctx, query,
		task.ID,
		task.Title,
		string(task.Type),
		string(task.Priority),
		string(task.Status),
		nullTimePtr(task.EstimatedStart),
		nullTimePtr(task.EstimatedEnd),
		task.Address,
		task.Details,
		task.ClientID,
		task.VehicleID,
		task.CreatedBy,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return err
	}
	task.UpdatedBy = task.CreatedBy
	return nil
}

func updateTask(ctx context.Context, q querier, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		type = $3,
		priority = $4,
		status = $5,
		estimated_start = $6,
		estimated_end = $7,
		address = $8,
		details = NULLIF($9, ''),
		client_id = $10,
		vehicle_id = $11,
		updated_by = $12,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := q.QueryRow(ctx, query,
		task.ID,
		task.Title,
		string(task.Type),
		string(task.Priority),
		string(task.Status),
		nullTimePtr(task.EstimatedStart),
		nullTimePtr(task.EstimatedEnd),
		task.Address,
		task.Details,
		task.ClientID,
		task.VehicleID,
		task.UpdatedBy,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task                      domain.Task
		taskType, priority, state string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&taskType,
		&priority,
		&state,
		&task.EstimatedStart,
		&task.EstimatedEnd,
		&task.Address,
		&task.Details,
		&task.ClientID,
		&task.VehicleID,
		&task.CreatedBy,
		&task.UpdatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, mapError(err)
	}

	task.Type = domain.TaskType(taskType)
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(state)
	return &task, nil
}
