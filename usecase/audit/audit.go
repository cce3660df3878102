package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type UseCase struct {
	entries repository.AuditRepository
	logger  *zap.Logger
}

func New(entries repository.AuditRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{entries: entries, logger: logger}
}

// Query selects a page of the audit log. An empty TaskID lists every task.
type Query struct {
	TaskID string
	Limit  int
	Offset int
}

// List returns audit entries newest first.
func (uc *UseCase) List(ctx context.Context, q Query) ([]domain.AuditEntry, error) {
	filter := repository.AuditFilter{
		TaskID: strings.TrimSpace(q.TaskID),
		Limit:  ClampLimit(q.Limit),
		Offset: q.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	entries, err := uc.entries.List(ctx, filter)
	if err != nil {
		if usecase.IsInfrastructureError(err) {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "audit log unavailable", err)
		}
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

// ClampLimit maps a requested page size into [1, MaxLimit]; zero or negative means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
