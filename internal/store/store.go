// Package store persists bookmarks. Every operation is scoped to an owner
// id - callers never see or touch another user's rows.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

// ErrNotFound is returned when an id does not exist for the given owner.
var ErrNotFound = errors.New("bookmark not found")

// Fields is a partial update. Nil pointers leave the column untouched,
// so background enrichment can write metadata without clobbering a
// concurrent title edit.
type Fields struct {
	Title *string
	URL   *string

	Verified            *bool
	VerificationMessage *string
	VerifiedAt          *time.Time

	PreviewImage       *string
	PreviewTitle       *string
	PreviewDescription *string
	Favicon            *string
	LastPreviewFetch   *time.Time
}

// Empty reports whether the update would touch nothing.
func (f Fields) Empty() bool {
	return f.Title == nil && f.URL == nil &&
		f.Verified == nil && f.VerificationMessage == nil && f.VerifiedAt == nil &&
		f.PreviewImage == nil && f.PreviewTitle == nil && f.PreviewDescription == nil &&
		f.Favicon == nil && f.LastPreviewFetch == nil
}

// Store is the bookmark record store. List returns rows ordered by
// creation time, newest first.
type Store interface {
	List(ctx context.Context, ownerID string) ([]model.Bookmark, error)
	Get(ctx context.Context, ownerID string, id int64) (model.Bookmark, error)
	Insert(ctx context.Context, ownerID string, params model.NewBookmarkParams) (model.Bookmark, error)
	Update(ctx context.Context, ownerID string, id int64, fields Fields) error
	Delete(ctx context.Context, ownerID string, id int64) error
	Close() error
}
