package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a Postgres-backed task audit log.
func NewAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil || entry.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_audit_log (id, task_id, actor_id, action, changed_at, before, after, diff)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6, $7, $8)
	RETURNING changed_at
	`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.ActorID,
		entry.Action,
		nullTime(entry.ChangedAt),
		rawOrNil(entry.Before),
		rawOrNil(entry.After),
		rawOrNil(entry.Diff),
	).Scan(&entry.ChangedAt)
}

// List returns entries newest first. Limits are clamped by the caller.
func (r *auditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	const query = `
	SELECT id, task_id, actor_id, action, changed_at, before, after, diff
	FROM task_audit_log
	WHERE ($1 = '' OR task_id::text = $1)
	ORDER BY changed_at DESC, id
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.TaskID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			e                   domain.AuditEntry
			before, after, diff []byte
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &e.ActorID, &e.Action, &e.ChangedAt, &before, &after, &diff); err != nil {
			return nil, mapError(err)
		}
		e.Before, e.After, e.Diff = before, after, diff
		out = append(out, e)
	}
	return out, mapError(rows.Err())
}

func rawOrNil(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
