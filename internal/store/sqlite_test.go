package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "marks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "Go", URL: "https://go.dev"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected store-assigned id")
	}
	if first.Verified != nil {
		t.Error("new bookmark must start with unknown verification state")
	}

	time.Sleep(5 * time.Millisecond) // distinct created_at
	second, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "SQLite", URL: "https://sqlite.org"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Errorf("expected newest first, got id %d", list[0].ID)
	}
}

func TestSQLiteStore_OwnerScoping(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "Private", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := s.List(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob must not see alice's bookmarks, got %d", len(list))
	}

	if _, err := s.Get(ctx, "bob", b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign get, got %v", err)
	}
	if err := s.Delete(ctx, "bob", b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
	}

	// Alice still has her row.
	if _, err := s.Get(ctx, "alice", b.ID); err != nil {
		t.Errorf("get after foreign delete attempt: %v", err)
	}
}

func TestSQLiteStore_PartialUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "Go", URL: "https://go.dev"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	verified := true
	msg := "URL is reachable (200)"
	now := time.Now().UTC()
	err = s.Update(ctx, "alice", b.ID, store.Fields{
		Verified:            &verified,
		VerificationMessage: &msg,
		VerifiedAt:          &now,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Get(ctx, "alice", b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Verified == nil || !*got.Verified {
		t.Error("verified flag not persisted")
	}
	if got.VerificationMessage != msg {
		t.Errorf("unexpected message %q", got.VerificationMessage)
	}
	if got.VerifiedAt == nil {
		t.Error("verified_at not persisted")
	}
	// Untouched columns stay intact.
	if got.Title != "Go" || got.URL != "https://go.dev" {
		t.Errorf("partial update clobbered other fields: %+v", got)
	}
}

func TestSQLiteStore_UpdateMissingRow(t *testing.T) {
	s := openTestStore(t)

	title := "x"
	err := s.Update(context.Background(), "alice", 999, store.Fields{Title: &title})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b, err := s.Insert(ctx, "alice", model.NewBookmarkParams{Title: "Gone", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.Delete(ctx, "alice", b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "alice", b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
