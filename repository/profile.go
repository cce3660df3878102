package repository

import (
	"context"

	"github.com/fastygo/dispatch/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	ListByRole(ctx context.Context, role string) ([]domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
}

type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
}

type VehicleRepository interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
}
