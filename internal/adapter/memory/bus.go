package memory

import (
	"context"
	"sync"

	"github.com/nandaputra/homecrew/internal/domain/event"
	porteventbus "github.com/nandaputra/homecrew/internal/port/eventbus"
)

// EventBus is an in-process fan-out bus. Handlers run synchronously on the
// publishing goroutine.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel][]*busSubscription
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[event.Channel][]*busSubscription)}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	// active is only read and written under mu; the snapshot lets handlers
	// run without holding the lock.
	eb.mu.RLock()
	var subs []*busSubscription
	for _, sub := range eb.subs[ch] {
		if sub.active {
			subs = append(subs, sub)
		}
	}
	eb.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(ctx, e)
	}
	return nil
}

func (eb *EventBus) Subscribe(_ context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	sub := &busSubscription{bus: eb, channel: ch, handler: handler, active: true}

	eb.mu.Lock()
	eb.subs[ch] = append(eb.subs[ch], sub)
	eb.mu.Unlock()

	return sub, nil
}

type busSubscription struct {
	bus     *EventBus
	channel event.Channel
	handler porteventbus.Handler
	active  bool
}

func (s *busSubscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.active = false
}
