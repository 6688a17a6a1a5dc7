package layout

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestCalculateListHeight(t *testing.T) {
	cfg := DefaultConfig().List

	assert.Equal(t, CalculateListHeight(30, cfg), 24)
	// Tiny terminals clamp to the minimum usable height.
	assert.Equal(t, CalculateListHeight(5, cfg), cfg.MinHeight)
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		total    int
		height   int
		want     int
	}{
		{"fits entirely", 3, 5, 10, 0},
		{"selection at top", 0, 20, 10, 0},
		{"selection centered", 10, 20, 10, 5},
		{"selection at bottom clamps", 19, 20, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, CalculateViewportOffset(tt.selected, tt.total, tt.height), tt.want)
		})
	}
}

func TestCalculateModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	// 40% of 200 = 80, at the max
	assert.Equal(t, CalculateModalWidth(200, cfg), cfg.MaxWidth)
	// 40% of 60 = 24, below min, but terminal caps at 56
	assert.Equal(t, CalculateModalWidth(60, cfg), cfg.MinWidth)
	// Terminal narrower than min: capped at width-4
	assert.Equal(t, CalculateModalWidth(40, cfg), 36)
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	got, truncated := TruncateText("short", 10, cfg)
	assert.Equal(t, got, "short")
	assert.Assert(t, !truncated)

	got, truncated = TruncateText("a much longer title", 10, cfg)
	assert.Assert(t, truncated)
	assert.Assert(t, len([]rune(got)) <= 10, "got %q (%d runes)", got, len([]rune(got)))
	assert.Assert(t, strings.HasSuffix(got, cfg.Ellipsis))
}

func TestTruncateWithPrefix(t *testing.T) {
	cfg := DefaultConfig().Text

	got, truncated := TruncateWithPrefix("GitHub", 12, "+ ", cfg)
	assert.Equal(t, got, "+ GitHub")
	assert.Assert(t, !truncated)

	got, truncated = TruncateWithPrefix("A very long bookmark title", 12, "+ ", cfg)
	assert.Assert(t, truncated)
	assert.Equal(t, len([]rune(got)), 12)
	assert.Assert(t, strings.HasPrefix(got, "+ "), "prefix lost: %q", got)
}

func TestTruncateANSIAware(t *testing.T) {
	cfg := DefaultConfig().Text
	styled := "\x1b[7mGit\x1b[0mHub bookmarks and more"

	got := TruncateANSIAware(styled, 10, cfg)
	assert.Assert(t, VisibleLength(got) <= 10, "visible length %d: %q", VisibleLength(got), got)
	assert.Assert(t, StripANSI(got) != got, "styling stripped during truncation: %q", got)
}
