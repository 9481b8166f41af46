package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	"github.com/nandaputra/homecrew/internal/domain/geo"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
	portworker "github.com/nandaputra/homecrew/internal/port/worker"
)

// WorkerRepository implements both port/worker.Repository and
// port/worker.AvailabilityReader. Claim and Release are CAS transitions
// under the repository mutex, matching the Postgres adapter's conditional
// updates.
type WorkerRepository struct {
	mu      sync.RWMutex
	workers map[uuid.UUID]domainworker.Worker
}

func NewWorkerRepository() *WorkerRepository {
	return &WorkerRepository{workers: make(map[uuid.UUID]domainworker.Worker)}
}

func (r *WorkerRepository) Create(_ context.Context, w domainworker.Worker) (domainworker.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[w.ID] = w
	return w, nil
}

func (r *WorkerRepository) GetByID(_ context.Context, id uuid.UUID) (domainworker.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[id]
	if !ok {
		return domainworker.Worker{}, fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	return w, nil
}

func (r *WorkerRepository) List(_ context.Context, filters domainworker.ListFilters) ([]domainworker.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var workers []domainworker.Worker
	for _, w := range r.workers {
		if filters.Availability != nil && w.Availability != *filters.Availability {
			continue
		}
		if filters.Category != nil && !w.HasSpecialization(*filters.Category) {
			continue
		}
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].CreatedAt.After(workers[j].CreatedAt)
	})
	return workers, nil
}

// GetAvailable returns every available worker. The category pre-filter is a
// storage-side optimization the memory adapter does not need; specialization
// is scored by the engine regardless.
func (r *WorkerRepository) GetAvailable(_ context.Context, _ catalog.Category) ([]domainworker.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var workers []domainworker.Worker
	for _, w := range r.workers {
		if w.Availability == domainworker.AvailabilityAvailable {
			workers = append(workers, w)
		}
	}
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].CreatedAt.Before(workers[j].CreatedAt)
	})
	return workers, nil
}

func (r *WorkerRepository) UpdateAvailability(_ context.Context, id uuid.UUID, availability domainworker.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	w.Availability = availability
	r.workers[id] = w
	return nil
}

func (r *WorkerRepository) UpdateLocation(_ context.Context, id uuid.UUID, location geo.Point, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	w.Location = &location
	w.LocationAt = &at
	r.workers[id] = w
	return nil
}

func (r *WorkerRepository) Claim(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	if w.Availability != domainworker.AvailabilityAvailable {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotAvailable)
	}
	w.Availability = domainworker.AvailabilityBusy
	r.workers[id] = w
	return nil
}

func (r *WorkerRepository) Release(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, portworker.ErrNotFound)
	}
	if w.Availability == domainworker.AvailabilityBusy {
		w.Availability = domainworker.AvailabilityAvailable
		r.workers[id] = w
	}
	return nil
}
