// Package urlcheck validates bookmark URLs before they are persisted.
// Checks are purely syntactic - no network access.
package urlcheck

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmpty     = errors.New("URL is required")
	ErrMalformed = errors.New("not a valid URL")
	ErrScheme    = errors.New("URL must start with http:// or https://")
	ErrHost      = errors.New("URL needs a hostname like example.com")
)

// IsWellFormed reports whether candidate is a syntactically valid http(s) URL.
func IsWellFormed(candidate string) bool {
	return Validate(candidate) == nil
}

// Validate checks candidate and returns a human-readable error suitable for
// inline display next to a URL input field. A nil return means well-formed.
func Validate(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ErrEmpty
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ErrMalformed
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrScheme
	}

	host := parsed.Hostname()
	if host == "" {
		return ErrHost
	}

	// Require a dot-separated hostname with a plausible top-level domain.
	lastDot := strings.LastIndex(host, ".")
	if lastDot < 0 {
		return ErrHost
	}
	if len(host)-lastDot-1 < 2 {
		return ErrHost
	}

	return nil
}
