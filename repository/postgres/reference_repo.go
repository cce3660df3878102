package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type clientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	const query = `SELECT id, name, phone, email, created_at FROM clients ORDER BY name, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]domain.Client, 0)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err())
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) repository.VehicleRepository {
	return &vehicleRepository{pool: pool}
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	const query = `SELECT id, license_plate, model, vin, created_at FROM vehicles ORDER BY license_plate, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]domain.Vehicle, 0)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Model, &v.VIN, &v.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, v)
	}
	return out, mapError(rows.Err())
}
