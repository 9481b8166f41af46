package notifier

import (
	"context"

	"github.com/google/uuid"
)

// WorkerNotifier pushes an event toward a specific worker's device.
// [ISP] Separated from CustomerNotifier — the assigner declares both, other
// consumers declare only what they use.
type WorkerNotifier interface {
	NotifyWorker(ctx context.Context, workerID uuid.UUID, event any) error
}

// CustomerNotifier pushes an event to the customer who placed an order,
// keyed by order since customers have no account in this system.
type CustomerNotifier interface {
	NotifyCustomer(ctx context.Context, orderID uuid.UUID, event any) error
}
