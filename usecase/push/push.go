package push

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

type UseCase struct {
	subscriptions repository.PushSubscriptionRepository
	profiles      repository.ProfileRepository
	logger        *zap.Logger
	now           func() time.Time
}

func New(subscriptions repository.PushSubscriptionRepository, profiles repository.ProfileRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		subscriptions: subscriptions,
		profiles:      profiles,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers a browser push endpoint for userID, replacing the keys
// of an existing (user, endpoint) pair.
func (uc *UseCase) Subscribe(ctx context.Context, userID, endpoint string, keys domain.PushKeys) (*domain.PushSubscription, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	sub := &domain.PushSubscription{
		UserID:   userID,
		Endpoint: strings.TrimSpace(endpoint),
		Keys: domain.PushKeys{
			P256dh: strings.TrimSpace(keys.P256dh),
			Auth:   strings.TrimSpace(keys.Auth),
		},
	}
	problems := make(map[string]string)
	if sub.Endpoint == "" {
		problems["endpoint"] = "required"
	}
	if sub.Keys.P256dh == "" {
		problems["keys.p256dh"] = "required"
	}
	if sub.Keys.Auth == "" {
		problems["keys.auth"] = "required"
	}
	if verr := domain.NewValidationError("invalid subscription object", problems); verr != nil {
		return nil, verr
	}

	if _, err := uc.profiles.GetByID(ctx, userID); err != nil {
		return nil, storeError(err)
	}

	sub.UpdatedAt = uc.now()
	if err := uc.subscriptions.Upsert(ctx, sub); err != nil {
		uc.logger.Error("failed to save push subscription", zap.String("user_id", userID), zap.Error(err))
		return nil, storeError(err)
	}
	return sub, nil
}

// Unsubscribe removes the endpoint of userID. Removing an unknown endpoint succeeds.
func (uc *UseCase) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return domain.NewValidationError("invalid subscription object", map[string]string{"endpoint": "required"})
	}
	return storeError(uc.subscriptions.Delete(ctx, userID, endpoint))
}

// Subscriptions lists the endpoints registered by userID.
func (uc *UseCase) Subscriptions(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	subs, err := uc.subscriptions.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return subs, nil
}

func storeError(err error) error {
	if usecase.IsInfrastructureError(err) {
		return domain.WrapError(domain.ErrCodeUnavailable, "subscription store unavailable", err)
	}
	return err
}
