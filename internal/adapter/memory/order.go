package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainorder "github.com/nandaputra/homecrew/internal/domain/order"
	portorder "github.com/nandaputra/homecrew/internal/port/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domainorder.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]domainorder.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o domainorder.Order) (domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return o, nil
}

func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domainorder.Order{}, fmt.Errorf("order %s: %w", id, portorder.ErrNotFound)
	}
	return o, nil
}

func (r *OrderRepository) GetByTrackingCode(_ context.Context, code string) (domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.TrackingCode == code {
			return o, nil
		}
	}
	return domainorder.Order{}, fmt.Errorf("order %s: %w", code, portorder.ErrNotFound)
}

func (r *OrderRepository) List(_ context.Context, filters domainorder.ListFilters) ([]domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []domainorder.Order
	for _, o := range r.orders {
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		if filters.WorkerID != nil && (o.WorkerID == nil || *o.WorkerID != *filters.WorkerID) {
			continue
		}
		if filters.Unassigned && o.WorkerID != nil {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if filters.OldestFirst {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to domainorder.Status, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, portorder.ErrNotFound)
	}
	if o.Status != from {
		return fmt.Errorf("order %s status CAS failed: expected status %s", id, from)
	}
	now := time.Now().UTC()
	o.Status = to
	o.UpdatedAt = now
	o.Timeline = append(o.Timeline, domainorder.TimelineEntry{At: now, Status: to, Note: note})
	r.orders[id] = o
	return nil
}

func (r *OrderRepository) AssignWorker(_ context.Context, orderID, workerID uuid.UUID, rationale string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, portorder.ErrNotFound)
	}
	if o.Status != domainorder.StatusConfirmed || o.WorkerID != nil {
		return fmt.Errorf("order %s: %w", orderID, portorder.ErrNotAssignable)
	}
	o.WorkerID = &workerID
	o.Status = domainorder.StatusAssigned
	o.AssignedAt = &at
	o.UpdatedAt = at
	o.Timeline = append(o.Timeline, domainorder.TimelineEntry{At: at, Status: domainorder.StatusAssigned, Note: rationale})
	r.orders[orderID] = o
	return nil
}

func (r *OrderRepository) CountActiveByWorker(_ context.Context, workerID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, o := range r.orders {
		if o.WorkerID != nil && *o.WorkerID == workerID && o.Status.Active() {
			count++
		}
	}
	return count, nil
}
