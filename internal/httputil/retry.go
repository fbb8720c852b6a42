// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the throttled, retrying HTTP transport used for
// provider requests.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// maxRetryAfter caps a provider-supplied Retry-After so a bad header cannot
// stall a request past any reasonable deadline.
const maxRetryAfter = 30 * time.Second

const defaultMaxRetries = 2

// Client sends requests through an optional token-bucket limiter and retries
// HTTP 429 responses.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter

	// MaxRetries bounds 429 retries. Zero selects the default (2); a
	// negative value disables retries.
	MaxRetries int
}

// NewClient builds a Client from cfg. A RequestsPerSecond of zero disables
// throttling.
func NewClient(cfg types.HTTPConfig) *Client {
	c := &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Do executes req and retries on HTTP 429 (Too Many Requests). The delay is
// taken from a Retry-After header when present, otherwise it starts at
// RetryBaseDelay and doubles each attempt.
//
// Every attempt first waits for a limiter token. On each 429 the response
// body is drained and closed before sleeping. If the context is cancelled
// while waiting the function returns ctx.Err(). After exhausting retries the
// last 429 response is returned so the caller can inspect it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := hc.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries: return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		backoff := retryAfter(resp)
		if backoff <= 0 {
			backoff = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}
