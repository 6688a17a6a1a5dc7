package exporter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
)

func TestExportHTML(t *testing.T) {
	created := time.Unix(1234567890, 0)
	bookmarks := []model.Bookmark{
		{ID: 1, Title: "Example <Site>", URL: "https://example.com?a=1&b=2", CreatedAt: created},
		{ID: 2, Title: "GitHub", URL: "https://github.com", CreatedAt: created},
	}

	out := exporter.ExportHTML(bookmarks)

	if !strings.HasPrefix(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("missing Netscape doctype")
	}
	if !strings.Contains(out, "Example &lt;Site&gt;") {
		t.Error("title not HTML-escaped")
	}
	if !strings.Contains(out, "https://example.com?a=1&amp;b=2") {
		t.Error("URL not HTML-escaped")
	}
	if !strings.Contains(out, `ADD_DATE="1234567890"`) {
		t.Error("creation time not carried as ADD_DATE")
	}
}

func TestExportRoundTripsThroughImporter(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: "GitHub", URL: "https://github.com", CreatedAt: time.Now()},
		{ID: 2, Title: "Reddit", URL: "https://reddit.com", CreatedAt: time.Now()},
	}

	out := exporter.ExportHTML(bookmarks)
	res, err := importer.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-importing export: %v", err)
	}

	if len(res.Entries) != 2 {
		t.Fatalf("round trip lost entries: %d", len(res.Entries))
	}
	if res.Entries[0].Title != "GitHub" || res.Entries[1].Title != "Reddit" {
		t.Errorf("round trip mangled titles: %+v", res.Entries)
	}
}
