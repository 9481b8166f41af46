package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
)

var (
	ErrNotFound = errors.New("worker not found")

	// ErrNotAvailable is the Claim CAS losing its race: the worker was no
	// longer available at commit time. Retryable — the caller may re-run
	// assignment for the same order.
	ErrNotAvailable = errors.New("worker not available")
)

// Repository manages worker state in storage.
type Repository interface {
	Create(ctx context.Context, w domainworker.Worker) (domainworker.Worker, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainworker.Worker, error)
	List(ctx context.Context, filters domainworker.ListFilters) ([]domainworker.Worker, error)

	UpdateAvailability(ctx context.Context, id uuid.UUID, availability domainworker.Availability) error
	UpdateLocation(ctx context.Context, id uuid.UUID, location geo.Point, at time.Time) error

	// Claim flips availability available→busy only if it is still available
	// (atomic conditional update). Returns ErrNotAvailable when the CAS loses.
	Claim(ctx context.Context, id uuid.UUID) error
	// Release flips availability busy→available. Used both when an order
	// finishes and as the compensating write when an order commit fails
	// after a successful Claim.
	Release(ctx context.Context, id uuid.UUID) error
}
