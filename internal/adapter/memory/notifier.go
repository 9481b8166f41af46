package memory

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notifier logs notifications instead of delivering them. Used when no
// RabbitMQ broker is configured.
type Notifier struct{}

func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) NotifyWorker(ctx context.Context, workerID uuid.UUID, event any) error {
	slog.InfoContext(ctx, "notify worker", "worker_id", workerID, "event", event)
	return nil
}

func (n *Notifier) NotifyCustomer(ctx context.Context, orderID uuid.UUID, event any) error {
	slog.InfoContext(ctx, "notify customer", "order_id", orderID, "event", event)
	return nil
}
