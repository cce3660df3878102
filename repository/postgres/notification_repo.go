package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	const query = `
	SELECT id, user_id, type, task_id, payload, read, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectNotifications(rows)
}

func (r *notificationRepository) GetMany(ctx context.Context, ids []string) ([]domain.Notification, error) {
	if len(ids) == 0 {
		return []domain.Notification{}, nil
	}
	const query = `
	SELECT id, user_id, type, task_id, payload, read, created_at
	FROM notifications
	WHERE id::text = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError(err)
	}
	return collectNotifications(rows)
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return domain.ErrInvalidPayload
	}
	const query = `UPDATE notifications SET read = $2, payload = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, n.ID, n.Read, marshalJSON(n.Payload))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) Insert(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range notifications {
		n := &notifications[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		batch.Queue(`
		INSERT INTO notifications (id, user_id, type, task_id, payload, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
			n.ID, n.UserID, n.Type, n.TaskID, marshalJSON(n.Payload), n.Read,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&n.CreatedAt)
		})
	}
	return mapError(r.pool.SendBatch(ctx, batch).Close())
}

func collectNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	defer rows.Close()
	out := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n       domain.Notification
			payload []byte
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.TaskID, &payload, &n.Read, &n.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &n.Payload)
		}
		out = append(out, n)
	}
	return out, mapError(rows.Err())
}

type pushSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPushSubscriptionRepository(pool *pgxpool.Pool) repository.PushSubscriptionRepository {
	return &pushSubscriptionRepository{pool: pool}
}

func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	if sub == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO push_subscriptions (user_id, endpoint, keys, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, endpoint) DO UPDATE
	SET keys = EXCLUDED.keys,
		updated_at = NOW()
	RETURNING updated_at
	`
	return mapError(r.pool.QueryRow(ctx, query, sub.UserID, sub.Endpoint, marshalJSON(sub.Keys)).Scan(&sub.UpdatedAt))
}

func (r *pushSubscriptionRepository) Delete(ctx context.Context, userID, endpoint string) error {
	const query = `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`
	_, err := r.pool.Exec(ctx, query, userID, endpoint)
	return mapError(err)
}

func (r *pushSubscriptionRepository) ListForUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	const query = `
	SELECT user_id, endpoint, keys, updated_at
	FROM push_subscriptions
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]domain.PushSubscription, 0)
	for rows.Next() {
		var (
			s    domain.PushSubscription
			keys []byte
		)
		if err := rows.Scan(&s.UserID, &s.Endpoint, &keys, &s.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		if err := json.Unmarshal(keys, &s.Keys); err != nil {
			return nil, mapError(err)
		}
		out = append(out, s)
	}
	return out, mapError(rows.Err())
}
