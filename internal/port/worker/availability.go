package worker

import (
	"context"

	"github.com/nandaputra/homecrew/internal/domain/catalog"
	domainworker "github.com/nandaputra/homecrew/internal/domain/worker"
)

// AvailabilityReader is the narrow interface the assignment engine's candidate
// query needs. The category is a pre-filter hint only — adapters may return
// workers outside the category's related set; specialization is scored, not
// filtered.
type AvailabilityReader interface {
	GetAvailable(ctx context.Context, category catalog.Category) ([]domainworker.Worker, error)
}
