// Package importer reads Netscape bookmark HTML (the format every browser
// exports) into a flat list of entries. Folder structure in the export is
// flattened; marks has no folders.
package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/urlcheck"
)

// Entry is one parsed bookmark candidate.
type Entry struct {
	Title string
	URL   string
}

// Result summarizes an import parse.
type Result struct {
	Entries []Entry
	// Skipped counts anchors dropped for missing or malformed URLs.
	Skipped int
}

// Parse extracts bookmarks from Netscape bookmark HTML. Anchors without a
// well-formed http(s) URL are counted and skipped, not errors: browser
// exports routinely contain javascript: and place: links.
func Parse(r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse bookmark html: %w", err)
	}

	var res Result
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			href := getAttr(n, "href")
			if !urlcheck.IsWellFormed(href) {
				res.Skipped++
				return
			}
			if seen[href] {
				res.Skipped++
				return
			}
			seen[href] = true

			title := getTextContent(n)
			if title == "" {
				title = href
			}
			res.Entries = append(res.Entries, Entry{Title: title, URL: href})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return res, nil
}

// Params converts an entry to store insert parameters.
func (e Entry) Params() model.NewBookmarkParams {
	return model.NewBookmarkParams{Title: e.Title, URL: e.URL}
}

func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
