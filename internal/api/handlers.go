package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/preview"
	"github.com/nikbrunner/marks/internal/probe"
	"github.com/nikbrunner/marks/internal/urlcheck"
)

// Prober runs the reachability check on behalf of HTTP clients.
type Prober interface {
	Probe(ctx context.Context, url string) probe.Result
}

// PreviewFetcher loads link-preview metadata on behalf of HTTP clients.
type PreviewFetcher interface {
	Fetch(ctx context.Context, url string) (preview.Preview, error)
}

type urlRequest struct {
	URL string `json:"url"`
}

type verifyResponse struct {
	Reachable bool   `json:"reachable"`
	Status    int    `json:"status,omitempty"`
	Message   string `json:"message"`
	Warning   bool   `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleVerifyURL checks a URL's reachability. Every handled outcome is a
// 200: an unreachable or unverifiable URL is a result, not a server error.
func handleVerifyURL(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeURLRequest(w, r)
		if !ok {
			return
		}

		if err := urlcheck.Validate(req.URL); err != nil {
			writeJSON(w, http.StatusOK, verifyResponse{Reachable: false, Message: err.Error()})
			return
		}

		res := d.Prober.Probe(r.Context(), req.URL)
		writeJSON(w, http.StatusOK, verifyResponse{
			Reachable: res.Reachable,
			Status:    res.StatusCode,
			Message:   res.Message,
			Warning:   res.Ambiguous,
		})
	}
}

// handleFetchPreview extracts page metadata. Timeouts map to 408 so
// clients can distinguish a slow page from a broken one.
func handleFetchPreview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeURLRequest(w, r)
		if !ok {
			return
		}

		if err := urlcheck.Validate(req.URL); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}

		p, err := d.Previews.Fetch(r.Context(), req.URL)
		if err != nil {
			switch {
			case errors.Is(err, preview.ErrTimeout):
				writeJSON(w, http.StatusRequestTimeout, errorResponse{Error: "preview fetch timed out"})
			default:
				d.Log.Warn("preview fetch failed", logger.String("url", req.URL), logger.Error(err))
				writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			}
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func decodeURLRequest(w http.ResponseWriter, r *http.Request) (urlRequest, bool) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return urlRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
