package providerapi

import (
	"context"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// newProviderLimiter returns a per-client rate limiter, the same posture
// the archive client uses (internal/archive/client.go) for politeness to a
// third-party host: each provider API gets its own limiter rather than one
// shared across all four, since they are different hosts with independent
// rate-limit policies.
func newProviderLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(5), 5)
}

// doGet waits on limiter, issues a GET, and returns the body plus status
// code uninterpreted, so each fetcher can apply its own "404 means empty,
// not error" rule.
func doGet(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string) ([]byte, int, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
