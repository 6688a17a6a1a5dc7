package model

import "time"

// Bookmark represents a saved URL owned by a single user.
//
// The verification and preview fields are advisory metadata written by
// background enrichment after the bookmark already exists. Verified is
// tri-state: nil means the URL has never been probed.
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`

	Verified            *bool      `json:"verified,omitempty"`
	VerificationMessage string     `json:"verificationMessage,omitempty"`
	VerifiedAt          *time.Time `json:"verifiedAt,omitempty"`

	PreviewImage       string     `json:"previewImage,omitempty"`
	PreviewTitle       string     `json:"previewTitle,omitempty"`
	PreviewDescription string     `json:"previewDescription,omitempty"`
	Favicon            string     `json:"favicon,omitempty"`
	LastPreviewFetch   *time.Time `json:"lastPreviewFetch,omitempty"`
}

// NewBookmarkParams holds the caller-supplied fields for creating a Bookmark.
// ID, UserID and CreatedAt are assigned by the store.
type NewBookmarkParams struct {
	Title string
	URL   string
}
