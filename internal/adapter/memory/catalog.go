// Package memory implements the storage, event-bus and locker ports in
// process memory. It backs STORAGE=memory deployments and the engine's
// integration-style tests. Conditional transitions mirror the Postgres
// adapter's CAS semantics and fail with the same port errors.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
)

type CatalogRepository struct {
	mu       sync.RWMutex
	services map[uuid.UUID]domaincatalog.Service
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{services: make(map[uuid.UUID]domaincatalog.Service)}
}

func (r *CatalogRepository) Create(_ context.Context, svc domaincatalog.Service) (domaincatalog.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.ID] = svc
	return svc, nil
}

func (r *CatalogRepository) GetByID(_ context.Context, id uuid.UUID) (domaincatalog.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[id]
	if !ok {
		return domaincatalog.Service{}, fmt.Errorf("service %s: %w", id, portcatalog.ErrNotFound)
	}
	return svc, nil
}

func (r *CatalogRepository) List(_ context.Context, activeOnly bool) ([]domaincatalog.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var services []domaincatalog.Service
	for _, svc := range r.services {
		if activeOnly && !svc.Active {
			continue
		}
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].CreatedAt.Before(services[j].CreatedAt)
	})
	return services, nil
}
