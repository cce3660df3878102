package profile

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

const maxNameLength = 120

type UseCase struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
	now      func() time.Time
}

func New(profiles repository.ProfileRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles: profiles,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	p, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// Drivers lists every driver profile, used to fill assignment pickers.
func (uc *UseCase) Drivers(ctx context.Context) ([]domain.Profile, error) {
	drivers, err := uc.profiles.ListByRole(ctx, domain.RoleDriver)
	if err != nil {
		return nil, storeError(err)
	}
	if drivers == nil {
		drivers = []domain.Profile{}
	}
	return drivers, nil
}

// UpdateName changes the display name of the caller's own profile. Role and
// email are managed by the identity provider and never change here.
func (uc *UseCase) UpdateName(ctx context.Context, userID, name string) (*domain.Profile, error) {
	p, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, domain.NewValidationError("invalid profile", map[string]string{"name": "required"})
	case len([]rune(name)) > maxNameLength:
		return nil, domain.NewValidationError("invalid profile", map[string]string{"name": "too long"})
	}
	p.Name = &name
	p.UpdatedAt = uc.now()
	if err := uc.profiles.Upsert(ctx, p); err != nil {
		uc.logger.Error("profile update failed", zap.String("user_id", userID), zap.Error(err))
		return nil, storeError(err)
	}
	return p, nil
}

func storeError(err error) error {
	if usecase.IsInfrastructureError(err) {
		return domain.WrapError(domain.ErrCodeUnavailable, "profile store unavailable", err)
	}
	return err
}
