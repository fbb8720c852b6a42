// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/gourmet-finder/internal/httputil"
	"github.com/pdiddy/gourmet-finder/internal/metrics"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// Provider error codes documented by Hot Pepper. Code 1000 (server
// failure) is treated like any other failed request.
const (
	codeAuthFailure    = 2000
	codeInvalidRequest = 3000
)

// maxBodyBytes bounds a single response. A full page of 100 shops is well
// under 1 MiB.
const maxBodyBytes = 8 << 20

// HotPepper queries the Hot Pepper Gourmet search API.
type HotPepper struct {
	client    *httputil.Client
	apiKey    string
	baseURL   *url.URL
	userAgent string
}

// NewHotPepper returns a provider for cfg. A missing API key is reported as
// KindUpstreamUnavailable.
func NewHotPepper(cfg types.ProviderConfig, client *httputil.Client) (*HotPepper, error) {
	if cfg.APIKey == "" {
		return nil, newError(KindUpstreamUnavailable, "hotpepper", errors.New("API key is not configured"))
	}
	base := cfg.BaseURL
	if base == "" {
		base = types.DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, "hotpepper", fmt.Errorf("invalid base URL: %w", err))
	}
	if client == nil {
		client = httputil.NewClient(cfg.HTTPConfig)
	}
	return &HotPepper{
		client:    client,
		apiKey:    cfg.APIKey,
		baseURL:   u,
		userAgent: cfg.UserAgent,
	}, nil
}

// Search fetches one page of results.
func (h *HotPepper) Search(ctx context.Context, req PageRequest) (types.SearchResults, error) {
	if err := req.Validate(); err != nil {
		return types.SearchResults{}, err
	}
	return h.fetch(ctx, "search", req.Params())
}

// Detail fetches a single shop by identifier. The provider's results block
// is returned unchanged.
func (h *HotPepper) Detail(ctx context.Context, id string) (types.SearchResults, error) {
	if id == "" {
		return types.SearchResults{}, newError(KindInvalidQuery, "detail", errors.New("shop id is required"))
	}
	res, err := h.fetch(ctx, "detail", url.Values{"id": {id}, "format": {"json"}})
	if err != nil {
		return types.SearchResults{}, err
	}
	if len(res.Shop) == 0 {
		return types.SearchResults{}, newError(KindNotFound, "detail", fmt.Errorf("shop %s", id))
	}
	return res, nil
}

func (h *HotPepper) fetch(ctx context.Context, op string, params url.Values) (res types.SearchResults, err error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.UpstreamRequests.WithLabelValues(op, outcome(err)).Inc()
	}()

	// Parameters already on the base URL are kept unless a request sets them.
	q := h.baseURL.Query()
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", h.apiKey)
	u := *h.baseURL
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return res, fmt.Errorf("creating request: %w", err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(ctx, req)
	if err != nil {
		return res, classifyTransportError(ctx, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return res, newError(KindUpstreamUnavailable, op, fmt.Errorf("provider returned HTTP %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return res, fmt.Errorf("hotpepper %s returned HTTP %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return res, classifyTransportError(ctx, op, err)
	}
	if err := validateBody(body); err != nil {
		return res, fmt.Errorf("hotpepper %s: %w", op, err)
	}

	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return res, fmt.Errorf("parsing hotpepper %s response: %w", op, err)
	}
	if perr := providerError(op, env.Results.Errors); perr != nil {
		return res, perr
	}
	if env.Results.Shop == nil {
		env.Results.Shop = []types.Restaurant{}
	}
	return env.Results, nil
}

// providerError converts the provider's error list into a Go error.
func providerError(op string, errs []types.ProviderError) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	err := fmt.Errorf("provider error %d: %s", e.Code, e.Message)
	switch e.Code {
	case codeAuthFailure:
		return newError(KindUpstreamUnavailable, op, err)
	case codeInvalidRequest:
		return newError(KindInvalidQuery, op, err)
	}
	return fmt.Errorf("hotpepper %s: %w", op, err)
}

// classifyTransportError separates cancellation and unreachable endpoints
// from ordinary request failures.
func classifyTransportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return newError(KindCancelled, op, ctx.Err())
	}
	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || (errors.As(err, &opErr) && opErr.Op == "dial") {
		return newError(KindUpstreamUnavailable, op, err)
	}
	return fmt.Errorf("hotpepper %s request: %w", op, err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).Slug()
}
