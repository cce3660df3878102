package repository

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

// DashboardCache stores computed dashboard summaries. Get returns domain.ErrCacheMiss for absent keys.
type DashboardCache interface {
	Get(ctx context.Context, key string) (*domain.DashboardSummary, error)
	Set(ctx context.Context, key string, summary *domain.DashboardSummary) error
	Invalidate(ctx context.Context) error
}

// NotificationPublisher fans new notifications out to external deliverers.
type NotificationPublisher interface {
	Publish(ctx context.Context, notifications []domain.Notification) error
}
