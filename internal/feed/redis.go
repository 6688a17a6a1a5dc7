package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/marks/internal/logger"
)

const channelPrefix = "marks:feed:"

// RedisFeed is a Publisher and Source backed by Redis pub/sub. Each owner
// id gets one logical channel; every running session of that owner
// subscribes to it.
type RedisFeed struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisFeed wraps an already-connected client.
func NewRedisFeed(client *redis.Client, log logger.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log}
}

func channelFor(ownerID string) string {
	return channelPrefix + ownerID
}

// Publish pushes ev onto the owner's channel as JSON.
func (f *RedisFeed) Publish(ctx context.Context, ownerID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}
	if err := f.client.Publish(ctx, channelFor(ownerID), payload).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

// Subscribe opens the owner's channel and feeds decoded events to handler
// until the subscription is stopped. Undecodable payloads are logged and
// dropped.
func (f *RedisFeed) Subscribe(ctx context.Context, ownerID string, handler func(Event)) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, channelFor(ownerID))

	// Force the subscription onto the wire before returning, so callers
	// never miss events published right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to feed channel: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Warn("dropping malformed feed event",
					logger.String("channel", msg.Channel),
					logger.Error(err))
				continue
			}
			handler(ev)
		}
	}()

	return NewSubscription(func() {
		if err := pubsub.Close(); err != nil {
			f.log.Warn("closing feed channel", logger.Error(err))
		}
	}), nil
}
