package assigner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/event"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	portassign "github.com/nandaputra/homecrew/internal/port/assigner"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
	portbus "github.com/nandaputra/homecrew/internal/port/eventbus"
	portnotifier "github.com/nandaputra/homecrew/internal/port/notifier"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
)

// ErrInvalidLocation rejects malformed customer coordinates before any
// storage call is made.
var ErrInvalidLocation = errors.New("invalid customer location")

var _ portassign.Assigner = (*Service)(nil)

// Service scores every available worker on distance, specialization, rating,
// workload and availability, and commits the top candidate to the order.
// [SRP] Only selection and the two commit writes — no notification fan-out
// beyond the best-effort pushes, no order lifecycle.
type Service struct {
	catalog          portcatalog.Repository
	workers          portworker.Repository
	availability     portworker.AvailabilityReader
	orders           portorder.Repository
	bus              portbus.EventBus
	workerNotifier   portnotifier.WorkerNotifier
	customerNotifier portnotifier.CustomerNotifier
}

func NewService(
	catalog portcatalog.Repository,
	workers portworker.Repository,
	availability portworker.AvailabilityReader,
	orders portorder.Repository,
	bus portbus.EventBus,
	workerNotifier portnotifier.WorkerNotifier,
	customerNotifier portnotifier.CustomerNotifier,
) *Service {
	return &Service{
		catalog:          catalog,
		workers:          workers,
		availability:     availability,
		orders:           orders,
		bus:              bus,
		workerNotifier:   workerNotifier,
		customerNotifier: customerNotifier,
	}
}

// AssignOptimalWorker selects the best available worker for the order and
// atomically commits the assignment: worker available→busy (CAS), then order
// confirmed→assigned with the scoring rationale on the timeline. If the order
// write fails after a successful claim, the worker is released again.
//
// (nil, nil) means no match — either no candidates or none above the
// acceptance threshold. Both are expected business outcomes, not errors.
func (s *Service) AssignOptimalWorker(ctx context.Context, req portassign.Request) (*domainworker.Worker, error) {
	if err := req.CustomerLocation.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}

	svc, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("resolve service %s: %w", req.ServiceID, err)
	}

	candidates, err := s.availability.GetAvailable(ctx, svc.Category)
	if err != nil {
		return nil, fmt.Errorf("get available workers: %w", err)
	}
	if len(candidates) == 0 {
		slog.InfoContext(ctx, "assignment: no candidates available",
			"order_id", req.OrderID, "category", svc.Category)
		return nil, nil
	}

	scores := make([]Score, 0, len(candidates))
	byID := make(map[uuid.UUID]domainworker.Worker, len(candidates))
	for _, w := range candidates {
		active, err := s.orders.CountActiveByWorker(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("count active orders for worker %s: %w", w.ID, err)
		}
		scores = append(scores, ScoreWorker(w, svc.Category, req.CustomerLocation, active))
		byID[w.ID] = w
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		// Exact ties go to the lexically smaller worker ID so repeated runs
		// pick the same worker.
		return scores[i].WorkerID.String() < scores[j].WorkerID.String()
	})

	best := scores[0]
	if best.Total < AcceptanceThreshold {
		slog.InfoContext(ctx, "assignment: best candidate below threshold",
			"order_id", req.OrderID, "worker_id", best.WorkerID,
			"score", best.Total, "threshold", AcceptanceThreshold,
			"breakdown", best.Breakdown)
		return nil, nil
	}

	if err := s.workers.Claim(ctx, best.WorkerID); err != nil {
		return nil, fmt.Errorf("claim worker %s: %w", best.WorkerID, err)
	}

	if err := s.orders.AssignWorker(ctx, req.OrderID, best.WorkerID, best.Breakdown, time.Now().UTC()); err != nil {
		// Compensate — never leave a worker busy without an order.
		if relErr := s.workers.Release(ctx, best.WorkerID); relErr != nil {
			slog.ErrorContext(ctx, "assignment: failed to release worker after order write failure",
				"worker_id", best.WorkerID, "error", relErr)
		}
		return nil, fmt.Errorf("assign order %s: %w", req.OrderID, err)
	}

	s.bus.Publish(ctx, event.New(event.TypeOrderAssigned, req.OrderID)) //nolint:errcheck

	if err := s.workerNotifier.NotifyWorker(ctx, best.WorkerID, map[string]string{
		"event": "order_assigned", "order_id": req.OrderID.String(),
	}); err != nil {
		slog.ErrorContext(ctx, "assignment: worker notification failed",
			"worker_id", best.WorkerID, "error", err)
	}
	if err := s.customerNotifier.NotifyCustomer(ctx, req.OrderID, map[string]string{
		"event": "worker_assigned", "worker_id": best.WorkerID.String(),
	}); err != nil {
		slog.ErrorContext(ctx, "assignment: customer notification failed",
			"order_id", req.OrderID, "error", err)
	}

	slog.InfoContext(ctx, "assignment: worker selected",
		"order_id", req.OrderID, "worker_id", best.WorkerID,
		"score", best.Total, "breakdown", best.Breakdown)

	chosen := byID[best.WorkerID]
	chosen.Availability = domainworker.AvailabilityBusy
	return &chosen, nil
}
