package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/marks/internal/feed"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

func TestWithFeed_PublishesMutations(t *testing.T) {
	inner, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "marks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer inner.Close()

	broker := feed.NewBroker()
	s := store.WithFeed(inner, broker, logger.Nop())

	var events []feed.Event
	sub, err := broker.Subscribe(context.Background(), "alice", func(ev feed.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Stop()

	ctx := context.Background()
	b, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "Go", URL: "https://go.dev"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	title := "Go (official)"
	if err := s.Update(ctx, "alice", b.ID, store.Fields{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Delete(ctx, "alice", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].Type != feed.EventInsert || events[0].New == nil || events[0].New.ID != b.ID {
		t.Errorf("unexpected insert event: %+v", events[0])
	}
	if events[1].Type != feed.EventUpdate || events[1].New == nil || events[1].New.Title != title {
		t.Errorf("update event should carry the fresh row: %+v", events[1])
	}
	if events[2].Type != feed.EventDelete || events[2].OldID != b.ID {
		t.Errorf("delete event should carry only the old id: %+v", events[2])
	}
	if events[2].New != nil {
		t.Error("delete event must not carry row data")
	}
}

func TestWithFeed_FailedMutationPublishesNothing(t *testing.T) {
	inner, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "marks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer inner.Close()

	broker := feed.NewBroker()
	s := store.WithFeed(inner, broker, logger.Nop())

	count := 0
	sub, _ := broker.Subscribe(context.Background(), "alice", func(feed.Event) { count++ })
	defer sub.Stop()

	if err := s.Delete(context.Background(), "alice", 12345); err == nil {
		t.Fatal("expected delete of missing row to fail")
	}
	if count != 0 {
		t.Errorf("failed mutation must not publish, got %d events", count)
	}
}
