package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrNotAssignable is the AssignWorker CAS failing because the order is no
	// longer confirmed-and-unassigned (concurrently cancelled or already
	// assigned). The claimed worker must be released by the caller.
	ErrNotAssignable = errors.New("order not assignable")
)

type Repository interface {
	Create(ctx context.Context, o domainorder.Order) (domainorder.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainorder.Order, error)
	GetByTrackingCode(ctx context.Context, code string) (domainorder.Order, error)
	List(ctx context.Context, filters domainorder.ListFilters) ([]domainorder.Order, error)

	// UpdateStatus performs an atomic CAS: only transitions if current status
	// matches `from`, and appends a timeline entry.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domainorder.Status, note string) error

	// AssignWorker atomically sets worker_id, transitions confirmed→assigned,
	// stamps assigned_at and appends the scoring rationale to the timeline.
	// Only succeeds while status='confirmed' AND worker_id IS NULL.
	AssignWorker(ctx context.Context, orderID, workerID uuid.UUID, rationale string, at time.Time) error

	// CountActiveByWorker returns how many of the worker's orders are in an
	// active status (accepted, en_route, arrived, in_progress).
	CountActiveByWorker(ctx context.Context, workerID uuid.UUID) (int, error)
}
