package notification

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type UseCase struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func New(notifications repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{notifications: notifications, logger: logger}
}

// List returns one page of the user's notifications, newest first. Pages are
// zero-based. Soft-deleted notifications are dropped after paging, so a page
// may be shorter than pageSize.
func (uc *UseCase) List(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if page < 0 {
		page = 0
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	rows, err := uc.notifications.ListForUser(ctx, userID, pageSize, page*pageSize)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for i := range rows {
		if !rows[i].IsDeleted() {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

// PatchInput updates one notification (ID) or several (IDs). Payload keys are
// merged into each existing payload.
type PatchInput struct {
	UserID  string
	ID      string
	IDs     []string
	Read    *bool
	Payload map[string]interface{}
}

// Patch applies in to notifications owned by in.UserID. It fails with
// INVALID when no id is given, NOT_FOUND when none exist and FORBIDDEN when
// any of them belongs to another user.
func (uc *UseCase) Patch(ctx context.Context, in PatchInput) ([]domain.Notification, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	ids := targetIDs(in)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("notification id(s) required", map[string]string{"ids": "required"})
	}

	existing, err := uc.notifications.GetMany(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}
	if len(existing) == 0 {
		return nil, domain.ErrNotificationNotFound
	}
	for i := range existing {
		if existing[i].UserID != in.UserID {
			return nil, domain.ErrForbidden
		}
	}
	if in.Read == nil && in.Payload == nil {
		return existing, nil
	}

	for i := range existing {
		n := &existing[i]
		if in.Read != nil {
			n.Read = *in.Read
		}
		if in.Payload != nil {
			n.Payload = mergePayload(n.Payload, in.Payload)
		}
		if err := uc.notifications.Update(ctx, n); err != nil {
			uc.logger.Error("notification update failed", zap.String("notification_id", n.ID), zap.Error(err))
			return nil, storeError(err)
		}
	}
	return existing, nil
}

func targetIDs(in PatchInput) []string {
	if id := strings.TrimSpace(in.ID); id != "" {
		return []string{id}
	}
	seen := make(map[string]struct{}, len(in.IDs))
	out := make([]string, 0, len(in.IDs))
	for _, id := range in.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func mergePayload(current, patch map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(current)+len(patch))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func storeError(err error) error {
	if usecase.IsInfrastructureError(err) {
		return domain.WrapError(domain.ErrCodeUnavailable, "notification store unavailable", err)
	}
	return err
}
