package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/event"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	portbus "github.com/nandaputra/homecrew/internal/port/eventbus"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
)

// Service manages worker lifecycle: registration, availability and location.
// Availability and location are written by the worker's own client; the
// assignment engine only reads them at decision time.
type Service struct {
	repo portworker.Repository
	bus  portbus.EventBus
}

func NewService(repo portworker.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Register(ctx context.Context, name, phone string, specializations []catalog.Category) (domainworker.Worker, error) {
	for _, c := range specializations {
		if !c.Valid() {
			return domainworker.Worker{}, fmt.Errorf("unknown specialization %q", c)
		}
	}

	w := domainworker.New(name, phone, specializations)
	created, err := s.repo.Create(ctx, w)
	if err != nil {
		return domainworker.Worker{}, fmt.Errorf("register worker: %w", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainworker.Worker, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainworker.Worker{}, fmt.Errorf("get worker: %w", err)
	}
	return w, nil
}

func (s *Service) List(ctx context.Context, filters domainworker.ListFilters) ([]domainworker.Worker, error) {
	workers, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

// SetAvailability updates the worker's availability and publishes the
// online/offline event the sweeper listens for.
func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, availability domainworker.Availability) error {
	if !availability.Valid() {
		return fmt.Errorf("invalid availability %q", availability)
	}
	if err := s.repo.UpdateAvailability(ctx, id, availability); err != nil {
		return fmt.Errorf("update worker availability: %w", err)
	}

	var t event.Type
	switch availability {
	case domainworker.AvailabilityAvailable:
		t = event.TypeWorkerOnline
	case domainworker.AvailabilityOffline, domainworker.AvailabilityOnLeave:
		t = event.TypeWorkerOffline
	default:
		return nil
	}
	if err := s.bus.Publish(ctx, event.New(t, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish worker availability event",
			"worker_id", id, "availability", availability, "error", err)
	}
	return nil
}

func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, location geo.Point) error {
	if err := location.Validate(); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	if err := s.repo.UpdateLocation(ctx, id, location, time.Now().UTC()); err != nil {
		return fmt.Errorf("update worker location: %w", err)
	}
	s.bus.Publish(ctx, event.New(event.TypeWorkerLocation, id)) //nolint:errcheck
	return nil
}
