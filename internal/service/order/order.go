package order

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/event"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	portassign "github.com/nandaputra/homecrew/internal/port/assigner"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
	portbus "github.com/nandaputra/homecrew/internal/port/eventbus"
	portlocker "github.com/nandaputra/homecrew/internal/port/locker"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
)

// Service manages order lifecycle and drives assignment through the engine.
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	repo     portorder.Repository
	catalog  portcatalog.Repository
	workers  portworker.Repository
	assigner portassign.Assigner
	bus      portbus.EventBus
	locker   portlocker.AdvisoryLocker
}

func NewService(
	repo portorder.Repository,
	catalog portcatalog.Repository,
	workers portworker.Repository,
	assigner portassign.Assigner,
	bus portbus.EventBus,
	locker portlocker.AdvisoryLocker,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		workers:  workers,
		assigner: assigner,
		bus:      bus,
		locker:   locker,
	}
}

func (s *Service) Create(ctx context.Context, serviceID uuid.UUID, customerName, customerPhone string, location geo.Point, address string, urgency domainorder.Urgency, scheduledAt *time.Time) (domainorder.Order, error) {
	if err := location.Validate(); err != nil {
		return domainorder.Order{}, fmt.Errorf("invalid customer location: %w", err)
	}
	if urgency == "" {
		urgency = domainorder.UrgencyMedium
	}
	if !urgency.Valid() {
		return domainorder.Order{}, fmt.Errorf("invalid urgency %q", urgency)
	}
	if _, err := s.catalog.GetByID(ctx, serviceID); err != nil {
		return domainorder.Order{}, fmt.Errorf("resolve service %s: %w", serviceID, err)
	}

	o := domainorder.New(serviceID, customerName, customerPhone, location, address, urgency, scheduledAt)
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeOrderCreated, created.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish OrderCreated event", "order_id", created.ID, "error", err)
	}
	return created, nil
}

// Confirm transitions pending→confirmed and immediately runs the interactive
// assignment path. Assignment errors propagate to the caller; a no-match
// outcome leaves the order confirmed so the periodic sweep retries it.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (domainorder.Order, error) {
	if err := s.repo.UpdateStatus(ctx, id, domainorder.StatusPending, domainorder.StatusConfirmed, ""); err != nil {
		return domainorder.Order{}, fmt.Errorf("confirm order: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeOrderConfirmed, id)) //nolint:errcheck

	if err := s.Assign(ctx, id); err != nil {
		return domainorder.Order{}, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("fetch order after confirm: %w", err)
	}
	return o, nil
}

// Assign runs one assignment decision for a confirmed, unassigned order.
func (s *Service) Assign(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch order for assignment: %w", err)
	}
	if o.Status != domainorder.StatusConfirmed || o.WorkerID != nil {
		return fmt.Errorf("order %s is not awaiting assignment (status %s)", id, o.Status)
	}

	_, err = s.assigner.AssignOptimalWorker(ctx, portassign.Request{
		OrderID:          o.ID,
		ServiceID:        o.ServiceID,
		CustomerLocation: o.Location,
		Address:          o.Address,
		Urgency:          o.Urgency,
		ScheduledAt:      o.ScheduledAt,
	})
	if err != nil {
		return fmt.Errorf("assign order %s: %w", id, err)
	}
	return nil
}

// UpdateStatus performs a CAS status transition. When an order reaches a
// terminal status its worker is released back to available and a sweep is
// kicked off for the freed capacity.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domainorder.Status, note string) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}

	// Capture the worker before the CAS so a read failure afterwards can
	// never strand a released-but-unreleased worker. If assignment commits
	// between this read and the CAS, the CAS itself fails on the stale from.
	terminal := to == domainorder.StatusCompleted || to == domainorder.StatusCancelled
	var workerID *uuid.UUID
	if terminal {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch order before status update: %w", err)
		}
		workerID = o.WorkerID
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to, note); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeOrderUpdated, id)) //nolint:errcheck

	switch to {
	case domainorder.StatusCompleted:
		s.bus.Publish(ctx, event.New(event.TypeOrderCompleted, id)) //nolint:errcheck
	case domainorder.StatusCancelled:
		s.bus.Publish(ctx, event.New(event.TypeOrderCancelled, id)) //nolint:errcheck
	default:
		return nil
	}

	// Terminal status: free the worker and retry any stranded orders.
	if workerID != nil {
		if err := s.workers.Release(ctx, *workerID); err != nil {
			slog.ErrorContext(ctx, "failed to release worker after terminal status",
				"order_id", id, "worker_id", *workerID, "error", err)
		}
		// context.Background() so the goroutine outlives the request context.
		go func() {
			if err := s.SweepUnassigned(context.Background()); err != nil {
				slog.Error("sweep failed after worker release", "error", err)
			}
		}()
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainorder.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *Service) Track(ctx context.Context, code string) (domainorder.Order, error) {
	o, err := s.repo.GetByTrackingCode(ctx, code)
	if err != nil {
		return domainorder.Order{}, fmt.Errorf("track order %s: %w", code, err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, filters domainorder.ListFilters) ([]domainorder.Order, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// SweepUnassigned assigns every confirmed, unassigned order, oldest first.
// Serialised by an advisory lock so the ticker, the worker-online trigger and
// the terminal-status trigger never score the same worker pool concurrently.
// One bad order never aborts the batch.
func (s *Service) SweepUnassigned(ctx context.Context) error {
	return s.locker.WithLock(ctx, sweepKey(), func(ctx context.Context) error {
		status := domainorder.StatusConfirmed
		orders, err := s.repo.List(ctx, domainorder.ListFilters{
			Status:      &status,
			Unassigned:  true,
			OldestFirst: true,
		})
		if err != nil {
			return fmt.Errorf("list unassigned orders: %w", err)
		}

		var assigned, skipped int
		for _, o := range orders {
			w, err := s.assigner.AssignOptimalWorker(ctx, portassign.Request{
				OrderID:          o.ID,
				ServiceID:        o.ServiceID,
				CustomerLocation: o.Location,
				Address:          o.Address,
				Urgency:          o.Urgency,
				ScheduledAt:      o.ScheduledAt,
			})
			if err != nil {
				slog.ErrorContext(ctx, "sweep: assignment failed", "order_id", o.ID, "error", err)
				continue
			}
			if w == nil {
				skipped++
				continue
			}
			assigned++
		}

		if len(orders) > 0 {
			slog.InfoContext(ctx, "sweep finished",
				"orders", len(orders), "assigned", assigned, "unmatched", skipped)
		}
		return nil
	})
}

// sweepKey hashes a fixed label to a stable int64 for pg_advisory_lock.
func sweepKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("order_sweep"))
	return int64(h.Sum64())
}
