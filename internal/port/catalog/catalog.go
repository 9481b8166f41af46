package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domaincatalog "github.com/nandaputra/homecrew/internal/domain/catalog"
)

// ErrNotFound distinguishes a bad service reference (caller error) from the
// legitimate no-suitable-worker outcome.
var ErrNotFound = errors.New("service not found")

type Repository interface {
	Create(ctx context.Context, s domaincatalog.Service) (domaincatalog.Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (domaincatalog.Service, error)
	List(ctx context.Context, activeOnly bool) ([]domaincatalog.Service, error)
}
