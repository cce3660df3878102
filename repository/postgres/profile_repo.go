package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `
		SELECT id, name, email, employee_id, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, mapError(err)
	}
	return p, nil
}

func (r *profileRepository) ListByRole(ctx context.Context, role string) ([]domain.Profile, error) {
	const query = `
		SELECT id, name, email, employee_id, role, created_at, updated_at
		FROM profiles
		WHERE ($1 = '' OR role = $1)
		ORDER BY name NULLS LAST, id
	`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *p)
	}
	return out, mapError(rows.Err())
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO profiles (id, name, email, employee_id, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		email = EXCLUDED.email,
		employee_id = EXCLUDED.employee_id,
		role = EXCLUDED.role,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	return r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.EmployeeID,
		profile.Role,
		nullTime(profile.CreatedAt),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.EmployeeID, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}
