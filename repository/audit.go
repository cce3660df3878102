package repository

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

type AuditFilter struct {
	TaskID string
	Limit  int
	Offset int
}

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}
