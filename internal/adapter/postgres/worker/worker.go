package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
)

const workerColumns = `id, name, phone, specializations, availability,
	lat, lng, location_at, rating, jobs_completed, created_at`

// Repository implements both port/worker.Repository and
// port/worker.AvailabilityReader.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, w domainworker.Worker) (domainworker.Worker, error) {
	query := `
		INSERT INTO workers (id, name, phone, specializations, availability,
			lat, lng, location_at, rating, jobs_completed, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING ` + workerColumns

	var lat, lng *float64
	if w.Location != nil {
		lat, lng = &w.Location.Lat, &w.Location.Lng
	}

	row := r.pool.QueryRow(ctx, query,
		w.ID, w.Name, w.Phone, specStrings(w.Specializations), string(w.Availability),
		lat, lng, w.LocationAt, w.Rating, w.JobsCompleted, w.CreatedAt,
	)
	created, err := scanWorker(row)
	if err != nil {
		return domainworker.Worker{}, fmt.Errorf("inserting worker: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainworker.Worker, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)
	w, err := scanWorker(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainworker.Worker{}, fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
		}
		return domainworker.Worker{}, fmt.Errorf("querying worker: %w", err)
	}
	return w, nil
}

func (r *Repository) List(ctx context.Context, filters domainworker.ListFilters) ([]domainworker.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.Availability != nil {
		query += fmt.Sprintf(" AND availability = $%d", argIdx)
		args = append(args, string(*filters.Availability))
		argIdx++
	}
	if filters.Category != nil {
		query += fmt.Sprintf(" AND specializations @> $%d", argIdx)
		args = append(args, []string{string(*filters.Category)})
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	return scanWorkers(rows)
}

// GetAvailable implements port/worker.AvailabilityReader. The category's
// related set is used as a server-side pre-filter; workers whose
// specializations overlap it come first, but generalists with no overlap are
// still returned — specialization is scored, not filtered.
func (r *Repository) GetAvailable(ctx context.Context, category catalog.Category) ([]domainworker.Worker, error) {
	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE availability = 'available'
		ORDER BY specializations && $1 DESC, created_at`

	rows, err := r.pool.Query(ctx, query, specStrings(category.Related()))
	if err != nil {
		return nil, fmt.Errorf("getting available workers: %w", err)
	}
	defer rows.Close()

	return scanWorkers(rows)
}

func (r *Repository) UpdateAvailability(ctx context.Context, id uuid.UUID, availability domainworker.Availability) error {
	tag, err := r.pool.Exec(ctx, `UPDATE workers SET availability = $1 WHERE id = $2`, string(availability), id)
	if err != nil {
		return fmt.Errorf("updating worker availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	return nil
}

func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, location geo.Point, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workers SET lat = $1, lng = $2, location_at = $3 WHERE id = $4`,
		location.Lat, location.Lng, at, id)
	if err != nil {
		return fmt.Errorf("updating worker location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	return nil
}

// Claim is the availability CAS: it only flips available→busy if the worker
// is still available. Zero rows affected means another assignment won the
// race (or the worker went offline) — reported as ErrNotAvailable.
func (r *Repository) Claim(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workers SET availability = 'busy' WHERE id = $1 AND availability = 'available'`, id)
	if err != nil {
		return fmt.Errorf("claiming worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotAvailable)
	}
	return nil
}

// Release flips busy→available. Releasing a worker who is not busy is a
// no-op; only a missing worker is an error.
func (r *Repository) Release(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workers SET availability = 'available' WHERE id = $1 AND availability = 'busy'`, id)
	if err != nil {
		return fmt.Errorf("releasing worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM workers WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("releasing worker: %w", err)
		}
		if !exists {
			return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorker(row rowScanner) (domainworker.Worker, error) {
	var w domainworker.Worker
	var specs []string
	var lat, lng *float64

	err := row.Scan(
		&w.ID, &w.Name, &w.Phone, &specs, &w.Availability,
		&lat, &lng, &w.LocationAt, &w.Rating, &w.JobsCompleted, &w.CreatedAt,
	)
	if err != nil {
		return domainworker.Worker{}, err
	}

	w.Specializations = specCategories(specs)
	if lat != nil && lng != nil {
		w.Location = &geo.Point{Lat: *lat, Lng: *lng}
	}
	return w, nil
}

func scanWorkers(rows pgx.Rows) ([]domainworker.Worker, error) {
	var workers []domainworker.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning worker row: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func specStrings(categories []catalog.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func specCategories(specs []string) []catalog.Category {
	out := make([]catalog.Category, len(specs))
	for i, s := range specs {
		out[i] = catalog.Category(s)
	}
	return out
}
