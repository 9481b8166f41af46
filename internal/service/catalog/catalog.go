package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
	portcatalog "github.com/nandaputra/homecrew/internal/port/catalog"
)

// Service manages the service catalog. Entries are immutable once created as
// far as assignment is concerned.
type Service struct {
	repo portcatalog.Repository
}

func NewService(repo portcatalog.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string, category domaincatalog.Category, basePrice int64, durationMinutes int) (domaincatalog.Service, error) {
	if name == "" {
		return domaincatalog.Service{}, fmt.Errorf("service name is required")
	}
	if !category.Valid() {
		return domaincatalog.Service{}, fmt.Errorf("unknown category %q", category)
	}
	if basePrice <= 0 {
		return domaincatalog.Service{}, fmt.Errorf("base price must be positive")
	}
	if durationMinutes <= 0 {
		return domaincatalog.Service{}, fmt.Errorf("duration must be positive")
	}

	created, err := s.repo.Create(ctx, domaincatalog.New(name, category, basePrice, durationMinutes))
	if err != nil {
		return domaincatalog.Service{}, fmt.Errorf("create service: %w", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domaincatalog.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaincatalog.Service{}, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domaincatalog.Service, error) {
	services, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}
