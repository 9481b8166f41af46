package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeOrderCreated   Type = "order_created"
	TypeOrderConfirmed Type = "order_confirmed"
	TypeOrderAssigned  Type = "order_assigned"
	TypeOrderUpdated   Type = "order_updated"
	TypeOrderCompleted Type = "order_completed"
	TypeOrderCancelled Type = "order_cancelled"
	TypeWorkerOnline   Type = "worker_online"
	TypeWorkerOffline  Type = "worker_offline"
	TypeWorkerLocation Type = "worker_location"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelOrder  Channel = "order"
	ChannelWorker Channel = "worker"
)

var typeToChannel = map[Type]Channel{
	TypeOrderCreated:   ChannelOrder,
	TypeOrderConfirmed: ChannelOrder,
	TypeOrderAssigned:  ChannelOrder,
	TypeOrderUpdated:   ChannelOrder,
	TypeOrderCompleted: ChannelOrder,
	TypeOrderCancelled: ChannelOrder,
	TypeWorkerOnline:   ChannelWorker,
	TypeWorkerOffline:  ChannelWorker,
	TypeWorkerLocation: ChannelWorker,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
