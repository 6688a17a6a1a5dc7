package search

import (
	"testing"

	"github.com/nikbrunner/marks/internal/model"
)

func bookmarks(titles ...string) []model.Bookmark {
	out := make([]model.Bookmark, len(titles))
	for i, title := range titles {
		out[i] = model.Bookmark{ID: int64(i + 1), Title: title}
	}
	return out
}

func TestFilter_EmptyQuery(t *testing.T) {
	results := Filter(bookmarks("GitHub"), "")
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFilter_ExactMatch(t *testing.T) {
	results := Filter(bookmarks("GitHub", "GitLab"), "GitHub")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.Title)
	}
	if results[0].Index != 0 {
		t.Errorf("expected index 0, got %d", results[0].Index)
	}
}

func TestFilter_FuzzyMatch(t *testing.T) {
	// "tanrou" should fuzzy match "TanStack Router"
	results := Filter(bookmarks("TanStack Router", "React Router"), "tanrou")
	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	if results[0].Bookmark.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Bookmark.Title)
	}
}

func TestFilter_MultipleMatches(t *testing.T) {
	results := Filter(bookmarks("GitHub", "GitLab", "Gitea"), "git")
	if len(results) != 3 {
		t.Errorf("expected 3 results for 'git', got %d", len(results))
	}
}

func TestFilter_NoMatch(t *testing.T) {
	results := Filter(bookmarks("GitHub"), "xyz123")
	if len(results) != 0 {
		t.Errorf("expected 0 results for 'xyz123', got %d", len(results))
	}
}

func TestFilter_SortedByScore(t *testing.T) {
	results := Filter(bookmarks("React Router Documentation", "Router"), "router")
	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}
	// The exact title should outrank the scattered match.
	if results[0].Bookmark.Title != "Router" {
		t.Errorf("expected 'Router' as first result, got %s", results[0].Bookmark.Title)
	}
}
