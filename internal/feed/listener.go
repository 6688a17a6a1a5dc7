package feed

import (
	"context"
	"sync"

	"github.com/nikbrunner/marks/internal/logger"
)

// Listener binds one session to its owner's change feed. It guarantees at
// most one active subscription, filters events for relevance, and coalesces
// bursts of events into single reloads.
type Listener struct {
	source   Source
	ownerID  string
	onReload func()
	log      logger.Logger

	mu   sync.Mutex
	sub  *Subscription
	kick chan struct{}
	done chan struct{}
}

// NewListener creates a Listener. onReload is invoked from a single
// background goroutine whenever a relevant event arrives.
func NewListener(source Source, ownerID string, onReload func(), log logger.Logger) *Listener {
	return &Listener{
		source:   source,
		ownerID:  ownerID,
		onReload: onReload,
		log:      log,
	}
}

// Start opens the owner's channel. Any previously active subscription is
// torn down first, so reconnects never stack duplicate channels.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.teardownLocked()

	sub, err := l.source.Subscribe(ctx, l.ownerID, l.handle)
	if err != nil {
		return err
	}

	l.sub = sub
	l.kick = make(chan struct{}, 1)
	l.done = make(chan struct{})
	go l.pump(l.kick, l.done)

	l.log.Debug("change feed active", logger.String("owner", l.ownerID))
	return nil
}

// Stop tears down the subscription. Safe to call repeatedly.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.teardownLocked()
}

// Active reports whether a subscription is currently open.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sub != nil
}

func (l *Listener) teardownLocked() {
	if l.sub == nil {
		return
	}
	l.sub.Stop()
	close(l.done)
	l.sub = nil
	l.kick = nil
	l.done = nil
}

// handle decides relevance. Inserts and updates must match the session
// owner - the transport is supposed to be scoped already, but the client
// does not assume it. Deletes are always relevant because the removed row
// can no longer prove its ownership.
func (l *Listener) handle(ev Event) {
	switch ev.Type {
	case EventInsert, EventUpdate:
		if ev.New == nil || ev.New.UserID != l.ownerID {
			l.log.Debug("ignoring event for other owner", logger.String("type", string(ev.Type)))
			return
		}
	case EventDelete:
		// always relevant
	default:
		return
	}

	l.mu.Lock()
	kick := l.kick
	l.mu.Unlock()
	if kick == nil {
		return
	}

	// A pending reload absorbs further triggers.
	select {
	case kick <- struct{}{}:
	default:
	}
}

// pump serializes reloads so event bursts collapse into one refresh.
func (l *Listener) pump(kick chan struct{}, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-kick:
			l.onReload()
		}
	}
}
