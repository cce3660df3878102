package repository

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

type NotificationRepository interface {
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
	Insert(ctx context.Context, notifications []domain.Notification) error
}

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.PushSubscription) error
	Delete(ctx context.Context, userID, endpoint string) error
	ListForUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}
