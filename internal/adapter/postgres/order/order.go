package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
)

const orderColumns = `id, tracking_code, service_id, customer_name, customer_phone,
	lat, lng, address, status, urgency, scheduled_at, worker_id, assigned_at,
	timeline, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domainorder.Order) (domainorder.Order, error) {
	timelineJSON, err := json.Marshal(o.Timeline)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("marshaling timeline: %w", err)
	}

	query := `
		INSERT INTO orders (id, tracking_code, service_id, customer_name, customer_phone,
			lat, lng, address, status, urgency, scheduled_at, worker_id, assigned_at,
			timeline, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING ` + orderColumns

	row := r.pool.QueryRow(ctx, query,
		o.ID, o.TrackingCode, o.ServiceID, o.CustomerName, o.CustomerPhone,
		o.Location.Lat, o.Location.Lng, o.Address, string(o.Status), string(o.Urgency),
		o.ScheduledAt, o.WorkerID, o.AssignedAt, timelineJSON, o.CreatedAt, o.UpdatedAt,
	)
	created, err := scanOrder(row)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("inserting order: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainorder.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainorder.Order{}, fmt.Errorf("order %s: %w", id, portorder.ErrNotFound)
		}
		return domainorder.Order{}, fmt.Errorf("querying order: %w", err)
	}
	return o, nil
}

func (r *Repository) GetByTrackingCode(ctx context.Context, code string) (domainorder.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracking_code = $1`, code)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainorder.Order{}, fmt.Errorf("order %s: %w", code, portorder.ErrNotFound)
		}
		return domainorder.Order{}, fmt.Errorf("querying order by tracking code: %w", err)
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context, filters domainorder.ListFilters) ([]domainorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filters.Status))
		argIdx++
	}
	if filters.WorkerID != nil {
		query += fmt.Sprintf(" AND worker_id = $%d", argIdx)
		args = append(args, *filters.WorkerID)
		argIdx++
	}
	if filters.Unassigned {
		query += " AND worker_id IS NULL"
	}

	if filters.OldestFirst {
		query += " ORDER BY created_at"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domainorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus is a CAS transition: zero rows affected means the order was
// not in the expected `from` status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domainorder.Status, note string) error {
	now := time.Now().UTC()
	entryJSON, err := json.Marshal(domainorder.TimelineEntry{At: now, Status: to, Note: note})
	if err != nil {
		return fmt.Errorf("marshaling timeline entry: %w", err)
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2, timeline = timeline || $3::jsonb
		WHERE id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query, string(to), now, entryJSON, id, string(from))
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s status CAS failed: expected status %s", id, from)
	}
	return nil
}

// AssignWorker commits the assignment decision in a single conditional
// update: only a confirmed, unassigned order can be claimed. The scoring
// rationale lands on the timeline as the audit trail for the choice.
func (r *Repository) AssignWorker(ctx context.Context, orderID, workerID uuid.UUID, rationale string, at time.Time) error {
	entryJSON, err := json.Marshal(domainorder.TimelineEntry{At: at, Status: domainorder.StatusAssigned, Note: rationale})
	if err != nil {
		return fmt.Errorf("marshaling timeline entry: %w", err)
	}

	query := `
		UPDATE orders
		SET worker_id = $1, status = 'assigned', assigned_at = $2, updated_at = $2,
			timeline = timeline || $3::jsonb
		WHERE id = $4 AND status = 'confirmed' AND worker_id IS NULL`

	tag, err := r.pool.Exec(ctx, query, workerID, at, entryJSON, orderID)
	if err != nil {
		return fmt.Errorf("assigning worker to order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing order (caller error) from a lost race.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return fmt.Errorf("checking order existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("order %s: %w", orderID, portorder.ErrNotFound)
		}
		return fmt.Errorf("order %s: %w", orderID, portorder.ErrNotAssignable)
	}
	return nil
}

func (r *Repository) CountActiveByWorker(ctx context.Context, workerID uuid.UUID) (int, error) {
	statuses := make([]string, len(domainorder.ActiveStatuses))
	for i, s := range domainorder.ActiveStatuses {
		statuses[i] = string(s)
	}

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE worker_id = $1 AND status = ANY($2)`,
		workerID, statuses,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active orders: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domainorder.Order, error) {
	var o domainorder.Order
	var timelineBytes []byte

	err := row.Scan(
		&o.ID, &o.TrackingCode, &o.ServiceID, &o.CustomerName, &o.CustomerPhone,
		&o.Location.Lat, &o.Location.Lng, &o.Address, &o.Status, &o.Urgency,
		&o.ScheduledAt, &o.WorkerID, &o.AssignedAt, &timelineBytes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domainorder.Order{}, err
	}

	if len(timelineBytes) > 0 {
		if err := json.Unmarshal(timelineBytes, &o.Timeline); err != nil {
			return domainorder.Order{}, fmt.Errorf("unmarshaling timeline: %w", err)
		}
	}
	return o, nil
}
