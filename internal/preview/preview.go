// Package preview fetches link-preview metadata (title, description, image,
// favicon) from a page's markup. Fetching is always best-effort: callers run
// it after a bookmark already exists and ignore failures beyond logging.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Timeout is the per-fetch request deadline.
const Timeout = 5 * time.Second

const userAgent = "marks-preview/1.0 (+https://github.com/nikbrunner/marks)"

var (
	// ErrTimeout marks a fetch that exceeded the deadline.
	ErrTimeout = errors.New("preview fetch timed out")
	// ErrStatus marks a non-2xx response from the page.
	ErrStatus = errors.New("page returned an error status")
)

// Preview holds extracted page metadata. Missing fields stay empty.
type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Favicon     string `json:"favicon"`
}

// Fetcher downloads pages and extracts social/meta-tag metadata.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the default timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: Timeout},
	}
}

// Fetch downloads rawURL and extracts preview metadata. On non-2xx or
// timeout it returns a structured error instead of partial data.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Preview{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Preview{}, ErrTimeout
		}
		return Preview{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Preview{}, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Preview{}, fmt.Errorf("parse page: %w", err)
	}

	base := resp.Request.URL
	return extract(doc, base), nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// extract walks the document once, collecting meta tags, the document title
// and icon links, then applies the per-field fallback chains.
func extract(doc *html.Node, base *url.URL) Preview {
	meta := map[string]string{}
	var docTitle string
	var iconHref string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "meta":
				key := getAttr(n, "property")
				if key == "" {
					key = getAttr(n, "name")
				}
				if key != "" {
					if content := getAttr(n, "content"); content != "" {
						key = strings.ToLower(key)
						if _, seen := meta[key]; !seen {
							meta[key] = content
						}
					}
				}
			case "title":
				if docTitle == "" {
					docTitle = getTextContent(n)
				}
			case "link":
				rel := strings.ToLower(getAttr(n, "rel"))
				if iconHref == "" && strings.Contains(rel, "icon") {
					iconHref = getAttr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p := Preview{
		Title:       firstOf(meta, "og:title", "twitter:title"),
		Description: firstOf(meta, "og:description", "twitter:description", "description"),
		Image:       firstOf(meta, "og:image", "twitter:image"),
		Favicon:     iconHref,
	}

	if p.Title == "" {
		p.Title = strings.TrimSpace(docTitle)
	}
	if p.Favicon == "" {
		p.Favicon = "/favicon.ico"
	}

	p.Image = resolve(base, p.Image)
	p.Favicon = resolve(base, p.Favicon)

	return p
}

// firstOf returns the first non-empty value among the given meta keys.
func firstOf(meta map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(meta[key]); v != "" {
			return v
		}
	}
	return ""
}

// resolve turns a possibly-relative reference into an absolute URL against
// the fetched page.
func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
