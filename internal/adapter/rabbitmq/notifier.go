// Package rabbitmq publishes assignment notifications to a topic exchange.
// Downstream delivery (WhatsApp, push) consumes from the queues bound to it;
// this service only produces.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "homecrew.notifications"

type Notifier struct {
	conn *amqp.Connection

	mu sync.Mutex // amqp channels are not safe for concurrent publish
	ch *amqp.Channel
}

func Dial(url string) (*Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()   //nolint:errcheck
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}

	return &Notifier{conn: conn, ch: ch}, nil
}

func (n *Notifier) Close() {
	if n.ch != nil {
		n.ch.Close() //nolint:errcheck
	}
	if n.conn != nil {
		n.conn.Close() //nolint:errcheck
	}
}

func (n *Notifier) NotifyWorker(ctx context.Context, workerID uuid.UUID, event any) error {
	return n.publish(ctx, "worker."+workerID.String(), event)
}

func (n *Notifier) NotifyCustomer(ctx context.Context, orderID uuid.UUID, event any) error {
	return n.publish(ctx, "customer."+orderID.String(), event)
}

func (n *Notifier) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing notification to %s: %w", routingKey, err)
	}
	return nil
}
