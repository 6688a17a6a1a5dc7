package urlcheck_test

import (
	"testing"

	"github.com/nikbrunner/marks/internal/urlcheck"
)

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"valid https", "https://example.com", true},
		{"valid http", "http://example.com/path?q=1", true},
		{"valid subdomain", "https://docs.example.co.uk", true},
		{"valid with port", "https://example.com:8443", true},
		{"surrounding whitespace", "  https://example.com  ", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"no scheme", "example.com", false},
		{"ftp scheme", "ftp://example.com", false},
		{"no dot in host", "https://localhost", false},
		{"short tld", "https://example.c", false},
		{"trailing dot only", "https://example.", false},
		{"scheme only", "https://", false},
		{"garbage", "http://%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urlcheck.IsWellFormed(tt.candidate); got != tt.want {
				t.Errorf("IsWellFormed(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	if err := urlcheck.Validate(""); err != urlcheck.ErrEmpty {
		t.Errorf("expected ErrEmpty for empty input, got %v", err)
	}
	if err := urlcheck.Validate("gopher://example.com"); err != urlcheck.ErrScheme {
		t.Errorf("expected ErrScheme, got %v", err)
	}
	if err := urlcheck.Validate("https://intranet"); err != urlcheck.ErrHost {
		t.Errorf("expected ErrHost, got %v", err)
	}
	if err := urlcheck.Validate("https://example.com"); err != nil {
		t.Errorf("expected nil for valid URL, got %v", err)
	}
}
