// Package search provides fuzzy filtering over the bookmark list.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/marks/internal/model"
)

// Result is one fuzzy match. Index points into the searched slice so
// callers can map back to their own view state; MatchedIndexes are the
// rune positions to highlight.
type Result struct {
	Index          int
	Bookmark       model.Bookmark
	MatchedIndexes []int
	Score          int
}

// titles adapts a bookmark slice to fuzzy.Source.
type titles []model.Bookmark

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Filter matches bookmarks by title, best score first. An empty query
// matches nothing.
func Filter(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, titles(bookmarks))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Index:          m.Index,
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
