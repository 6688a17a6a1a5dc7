package store

import (
	"context"

	"github.com/nikbrunner/marks/internal/feed"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

// feedStore decorates a Store so successful mutations publish change-feed
// events on the owner's channel. Publishing is best-effort: a feed failure
// is logged and never fails the mutation that triggered it.
type feedStore struct {
	inner Store
	pub   feed.Publisher
	log   logger.Logger
}

// WithFeed wraps inner so inserts, updates and deletes emit feed events.
func WithFeed(inner Store, pub feed.Publisher, log logger.Logger) Store {
	return &feedStore{inner: inner, pub: pub, log: log}
}

func (s *feedStore) List(ctx context.Context, ownerID string) ([]model.Bookmark, error) {
	return s.inner.List(ctx, ownerID)
}

func (s *feedStore) Get(ctx context.Context, ownerID string, id int64) (model.Bookmark, error) {
	return s.inner.Get(ctx, ownerID, id)
}

func (s *feedStore) Insert(ctx context.Context, ownerID string, params model.NewBookmarkParams) (model.Bookmark, error) {
	created, err := s.inner.Insert(ctx, ownerID, params)
	if err != nil {
		return model.Bookmark{}, err
	}

	s.publish(ctx, ownerID, feed.Event{Type: feed.EventInsert, New: &created})
	return created, nil
}

func (s *feedStore) Update(ctx context.Context, ownerID string, id int64, fields Fields) error {
	if err := s.inner.Update(ctx, ownerID, id, fields); err != nil {
		return err
	}

	ev := feed.Event{Type: feed.EventUpdate}
	if updated, err := s.inner.Get(ctx, ownerID, id); err == nil {
		ev.New = &updated
	} else {
		s.log.Warn("feed: reading updated row", logger.Int64("id", id), logger.Error(err))
	}
	if ev.New != nil {
		s.publish(ctx, ownerID, ev)
	}
	return nil
}

func (s *feedStore) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.inner.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.publish(ctx, ownerID, feed.Event{Type: feed.EventDelete, OldID: id})
	return nil
}

func (s *feedStore) Close() error {
	return s.inner.Close()
}

func (s *feedStore) publish(ctx context.Context, ownerID string, ev feed.Event) {
	if err := s.pub.Publish(ctx, ownerID, ev); err != nil {
		s.log.Warn("feed: publish failed",
			logger.String("type", string(ev.Type)),
			logger.Error(err))
	}
}
