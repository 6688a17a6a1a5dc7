package feed

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Broker is an in-process Publisher and Source. It backs single-process
// setups and tests; multi-process deployments use the Redis transport.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[string]func(Event) // ownerID -> subscription id -> handler
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[string]func(Event))}
}

// Publish delivers ev to every subscriber of ownerID's channel.
func (b *Broker) Publish(ctx context.Context, ownerID string, ev Event) error {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs[ownerID]))
	for _, h := range b.subs[ownerID] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

// Subscribe registers handler on ownerID's channel.
func (b *Broker) Subscribe(ctx context.Context, ownerID string, handler func(Event)) (*Subscription, error) {
	id := uuid.New().String()

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[string]func(Event))
	}
	b.subs[ownerID][id] = handler
	b.mu.Unlock()

	return NewSubscription(func() {
		b.mu.Lock()
		delete(b.subs[ownerID], id)
		b.mu.Unlock()
	}), nil
}

// SubscriberCount returns the number of open subscriptions for an owner.
func (b *Broker) SubscriberCount(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[ownerID])
}
