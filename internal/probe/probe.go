// Package probe checks whether a bookmark URL responds, without downloading
// the page body. Results are advisory: a failed probe never rejects a row.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Timeout is the per-probe request deadline.
const Timeout = 3 * time.Second

// Result holds the outcome of a single probe. Every failure path produces a
// normal Result - Probe never returns an error.
type Result struct {
	Reachable  bool
	StatusCode int    // 0 if no response was received
	Message    string // human-readable outcome
	// Ambiguous marks failures where the link may still be alive (DNS, TLS,
	// connection errors). Callers must not treat these as confirmed-dead.
	Ambiguous bool
}

// Prober issues lightweight reachability checks.
type Prober struct {
	client *http.Client
}

// New creates a Prober with the default timeout.
func New() *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Probe checks rawURL and reports whether it responds with a non-error
// status. Loopback and private-network hosts are reported reachable without
// a network call - they cannot be verified from this vantage point.
func (p *Prober) Probe(ctx context.Context, rawURL string) Result {
	if host := hostOf(rawURL); isPrivateHost(host) {
		return Result{
			Reachable: true,
			Message:   "Local address, skipping check",
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Result{Message: "Could not verify: " + err.Error(), Ambiguous: true}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return failure(err)
	}
	resp.Body.Close()

	// Some servers reject HEAD outright. Retry those with GET before
	// declaring the link dead.
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return Result{Message: "Could not verify: " + err.Error(), Ambiguous: true}
		}
		resp, err = p.client.Do(req)
		if err != nil {
			return failure(err)
		}
		resp.Body.Close()
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{
			Reachable:  true,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("URL is reachable (%d)", resp.StatusCode),
		}
	}

	return Result{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("URL responded with %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// failure maps a transport error to a Result, distinguishing timeouts from
// ambiguous network failures.
func failure(err error) Result {
	if isTimeout(err) {
		return Result{Message: "Timed out after " + Timeout.String()}
	}
	return Result{
		Message:   "Could not verify: " + normalizeError(err.Error()),
		Ambiguous: true,
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// isPrivateHost reports whether host points at loopback or a private network.
func isPrivateHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	if strings.HasPrefix(host, "192.168.") || strings.HasPrefix(host, "10.") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate()
	}
	return false
}

// normalizeError simplifies verbose transport errors into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
