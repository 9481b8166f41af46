package assigner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
)

// Request is one assignment decision for one order.
type Request struct {
	OrderID          uuid.UUID
	ServiceID        uuid.UUID
	CustomerLocation geo.Point
	Address          string
	// Urgency and ScheduledAt are accepted but do not currently alter
	// scoring. Kept as hooks for future tiering.
	Urgency     domainorder.Urgency
	ScheduledAt *time.Time
}

// Assigner selects and commits the best available worker for an order.
// A (nil, nil) return is the expected no-match outcome: either no candidates
// were available or none scored above the acceptance threshold.
type Assigner interface {
	AssignOptimalWorker(ctx context.Context, req Request) (*domainworker.Worker, error)
}
