// Package feed carries row-level change notifications between sessions.
// Mutating stores publish events; sessions subscribe to the channel of the
// owner they authenticated as and reload their list on relevant events.
package feed

import (
	"context"
	"sync"

	"github.com/nikbrunner/marks/internal/model"
)

// EventType classifies a change-feed event.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is a single row-level change. New is set for inserts and updates.
// Delete events only carry the removed row's id - the row is gone, so no
// owner metadata can be attached to it.
type Event struct {
	Type  EventType       `json:"eventType"`
	New   *model.Bookmark `json:"new,omitempty"`
	OldID int64           `json:"oldId,omitempty"`
}

// Publisher pushes events onto an owner's channel.
type Publisher interface {
	Publish(ctx context.Context, ownerID string, ev Event) error
}

// Source delivers events for an owner's channel until the returned
// subscription is stopped.
type Source interface {
	Subscribe(ctx context.Context, ownerID string, handler func(Event)) (*Subscription, error)
}

// Subscription is a handle on one open channel. Stop is idempotent.
type Subscription struct {
	once sync.Once
	stop func()
}

// NewSubscription wraps a teardown func. Source implementations use this.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Stop tears the channel down and releases its resources.
func (s *Subscription) Stop() {
	if s == nil {
		return
	}
	s.once.Do(s.stop)
}
