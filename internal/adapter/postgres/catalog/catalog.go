package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, s domaincatalog.Service) (domaincatalog.Service, error) {
	query := `
		INSERT INTO services (id, name, category, base_price, duration_minutes, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, name, category, base_price, duration_minutes, active, created_at`

	var created domaincatalog.Service
	err := r.pool.QueryRow(ctx, query,
		s.ID, s.Name, string(s.Category), s.BasePrice, s.DurationMinutes, s.Active, s.CreatedAt,
	).Scan(
		&created.ID, &created.Name, &created.Category, &created.BasePrice,
		&created.DurationMinutes, &created.Active, &created.CreatedAt,
	)
	if err != nil {
		return domaincatalog.Service{}, fmt.Errorf("inserting service: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaincatalog.Service, error) {
	query := `
		SELECT id, name, category, base_price, duration_minutes, active, created_at
		FROM services WHERE id = $1`

	var s domaincatalog.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Category, &s.BasePrice,
		&s.DurationMinutes, &s.Active, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domaincatalog.Service{}, fmt.Errorf("service %s: %w", id, portcatalog.ErrNotFound)
		}
		return domaincatalog.Service{}, fmt.Errorf("querying service: %w", err)
	}
	return s, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]domaincatalog.Service, error) {
	query := `
		SELECT id, name, category, base_price, duration_minutes, active, created_at
		FROM services`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	defer rows.Close()

	var services []domaincatalog.Service
	for rows.Next() {
		var s domaincatalog.Service
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Category, &s.BasePrice,
			&s.DurationMinutes, &s.Active, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning service row: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
