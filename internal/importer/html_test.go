package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/marks/internal/importer"
)

func TestParse_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	res, err := importer.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Title != "Example Site" || e.URL != "https://example.com" {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestParse_FoldersAreFlattened(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><H3>React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com">Google</A>
</DL><p>`

	res, err := importer.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 3 {
		t.Fatalf("expected all 3 bookmarks regardless of nesting, got %d", len(res.Entries))
	}
}

func TestParse_SkipsBadAndDuplicateURLs(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://example.com">Good</A>
    <DT><A HREF="javascript:void(0)">Bookmarklet</A>
    <DT><A HREF="place:sort=8">Firefox internal</A>
    <DT><A>No href</A>
    <DT><A HREF="https://example.com">Duplicate</A>
</DL><p>`

	res, err := importer.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (%+v)", len(res.Entries), res.Entries)
	}
	if res.Skipped != 4 {
		t.Errorf("expected 4 skipped, got %d", res.Skipped)
	}
}

func TestParse_TitleFallsBackToURL(t *testing.T) {
	html := `<DL><p><DT><A HREF="https://example.com"></A></DL><p>`

	res, err := importer.Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(res.Entries))
	}
	if res.Entries[0].Title != "https://example.com" {
		t.Errorf("title = %q, want the URL", res.Entries[0].Title)
	}
}
