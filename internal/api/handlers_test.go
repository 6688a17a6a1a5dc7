package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/preview"
	"github.com/nikbrunner/marks/internal/probe"
)

type stubProber struct {
	result probe.Result
}

func (p stubProber) Probe(context.Context, string) probe.Result { return p.result }

type stubPreviews struct {
	preview preview.Preview
	err     error
}

func (p stubPreviews) Fetch(context.Context, string) (preview.Preview, error) {
	return p.preview, p.err
}

func newTestServer(prober Prober, previews PreviewFetcher) http.Handler {
	return New(":0", Deps{
		Prober:   prober,
		Previews: previews,
		Log:      logger.Nop(),
	}).Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerifyURL_Reachable(t *testing.T) {
	h := newTestServer(stubProber{result: probe.Result{
		Reachable:  true,
		StatusCode: 200,
		Message:    "URL is reachable (200)",
	}}, stubPreviews{})

	rec := post(t, h, "/verify-url", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Reachable || resp.Status != 200 || resp.Warning {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestVerifyURL_AmbiguousIsWarningNot5xx(t *testing.T) {
	h := newTestServer(stubProber{result: probe.Result{
		Reachable: false,
		Ambiguous: true,
		Message:   "Could not verify: DNS failure",
	}}, stubPreviews{})

	rec := post(t, h, "/verify-url", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (ambiguity is a result, not an error)", rec.Code)
	}

	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reachable || !resp.Warning {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestVerifyURL_InvalidURL(t *testing.T) {
	h := newTestServer(stubProber{}, stubPreviews{})

	rec := post(t, h, "/verify-url", `{"url":"not a url"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reachable || resp.Message == "" {
		t.Errorf("expected validation message, got %+v", resp)
	}
}

func TestVerifyURL_BadBody(t *testing.T) {
	h := newTestServer(stubProber{}, stubPreviews{})

	rec := post(t, h, "/verify-url", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFetchPreview_OK(t *testing.T) {
	h := newTestServer(stubProber{}, stubPreviews{preview: preview.Preview{
		Title:   "Example",
		Favicon: "https://example.com/favicon.ico",
	}})

	rec := post(t, h, "/fetch-preview", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var p preview.Preview
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if p.Title != "Example" {
		t.Errorf("title = %q, want Example", p.Title)
	}
}

func TestFetchPreview_Timeout(t *testing.T) {
	h := newTestServer(stubProber{}, stubPreviews{err: preview.ErrTimeout})

	rec := post(t, h, "/fetch-preview", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want 408", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected error message in body")
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(stubProber{}, stubPreviews{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
