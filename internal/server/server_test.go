package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// stubProvider serves `available` synthetic shops and records requests.
type stubProvider struct {
	available int
	err       error
	failStart int
	block     bool

	mu       sync.Mutex
	requests []search.PageRequest
}

func (p *stubProvider) Search(ctx context.Context, req search.PageRequest) (types.SearchResults, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return types.SearchResults{}, &search.Error{Kind: search.KindCancelled, Op: "search", Err: ctx.Err()}
	}
	if p.err != nil {
		return types.SearchResults{}, p.err
	}
	if p.failStart != 0 && req.Start == p.failStart && req.Count > 1 {
		return types.SearchResults{}, errors.New("HTTP 500")
	}
	var shops []types.Restaurant
	for n := req.Start; n < req.Start+req.Count && n <= p.available; n++ {
		shops = append(shops, types.Restaurant{ID: fmt.Sprintf("J%06d", n), Name: fmt.Sprintf("Shop %d", n)})
	}
	if shops == nil {
		shops = []types.Restaurant{}
	}
	return types.SearchResults{
		APIVersion: "1.26",
		Available:  p.available,
		Returned:   types.Count(len(shops)),
		Start:      req.Start,
		Shop:       shops,
	}, nil
}

func (p *stubProvider) Detail(_ context.Context, id string) (types.SearchResults, error) {
	if id == "missing" {
		return types.SearchResults{}, &search.Error{Kind: search.KindNotFound, Op: "detail", Err: errors.New("shop missing")}
	}
	return types.SearchResults{
		APIVersion: "1.26",
		Available:  1,
		Returned:   1,
		Start:      1,
		Shop:       []types.Restaurant{{ID: id, Name: "Detail " + id}},
	}, nil
}

func (p *stubProvider) lastRequest() search.PageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func newTestServer(t *testing.T, p *stubProvider, cfg types.ServerConfig) http.Handler {
	t.Helper()
	cfg.Mode = "test"
	log := zaptest.NewLogger(t)
	agg := search.NewAggregator(p, types.ProviderConfig{PageSizeLimit: 100}, log)
	return New(cfg, p, agg, log).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Results struct {
		APIVersion string            `json:"api_version"`
		Available  int               `json:"results_available"`
		Returned   string            `json:"results_returned"`
		Start      int               `json:"results_start"`
		Shop       []json.RawMessage `json:"shop"`
	} `json:"results"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListDefaults(t *testing.T) {
	p := &stubProvider{available: 55}
	h := newTestServer(t, p, types.ServerConfig{})

	rec := get(t, h, "/api/restaurants/search/list?lat=35.68&lng=139.76")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, searchCacheControl, rec.Header().Get("Cache-Control"))

	env := decode[envelope](t, rec)
	assert.Equal(t, 55, env.Results.Available)
	assert.Equal(t, "20", env.Results.Returned)
	assert.Len(t, env.Results.Shop, 20)

	req := p.lastRequest()
	assert.Equal(t, 1, req.Start)
	assert.Equal(t, 20, req.Count)
	assert.Equal(t, search.Range1km, req.Query.Range())
}

func TestListPaging(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantStart int
		wantCount int
	}{
		{"page two", "page=2&count=20", 21, 20},
		{"explicit start", "start=41&count=10", 41, 10},
		{"start wins over page", "start=5&page=3", 5, 20},
		{"count capped", "count=500", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{available: 300}
			h := newTestServer(t, p, types.ServerConfig{})
			rec := get(t, h, "/api/restaurants/search/list?lat=35.68&lng=139.76&"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			req := p.lastRequest()
			assert.Equal(t, tt.wantStart, req.Start)
			assert.Equal(t, tt.wantCount, req.Count)
		})
	}
}

func TestListFilters(t *testing.T) {
	p := &stubProvider{available: 1}
	h := newTestServer(t, p, types.ServerConfig{})
	rec := get(t, h, "/api/restaurants/search/list?lat=35.68&lng=139.76&range=5&genre=G013&budget=B010&keyword=tonkotsu")
	require.Equal(t, http.StatusOK, rec.Code)

	q := p.lastRequest().Query
	assert.Equal(t, search.Range3km, q.Range())
	assert.Equal(t, search.Genre("G013"), q.Genre())
	assert.Equal(t, search.Budget("B010"), q.Budget())
	assert.Equal(t, "tonkotsu", q.Keyword())
}

func TestLegacySearchUsesRadius(t *testing.T) {
	p := &stubProvider{available: 5}
	h := newTestServer(t, p, types.ServerConfig{})
	rec := get(t, h, "/api/restaurants/search?lat=35.68&lng=139.76&radius=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.Range300m, p.lastRequest().Query.Range())
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		kind   string
	}{
		{"missing lat", "/api/restaurants/search/list?lng=139.76", "missing_location"},
		{"non-numeric lng", "/api/restaurants/search/list?lat=35&lng=east", "missing_location"},
		{"out of range lat", "/api/restaurants/search/map?lat=95&lng=139", "missing_location"},
		{"bad range", "/api/restaurants/search/list?lat=35&lng=139&range=8", "invalid_query"},
		{"bad genre", "/api/restaurants/search/map?lat=35&lng=139&genre=G999", "invalid_query"},
		{"bad count", "/api/restaurants/search/list?lat=35&lng=139&count=0", "invalid_query"},
		{"bad page", "/api/restaurants/search/list?lat=35&lng=139&page=x", "invalid_query"},
		{"detail without id", "/api/restaurants/detail", "invalid_query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{available: 10}
			h := newTestServer(t, p, types.ServerConfig{})
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, p.requests)
		})
	}
}

func TestMapReturnsEverything(t *testing.T) {
	p := &stubProvider{available: 250}
	h := newTestServer(t, p, types.ServerConfig{})

	rec := get(t, h, "/api/restaurants/search/map?lat=35.68&lng=139.76")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, searchCacheControl, rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get(partialHeader))

	env := decode[envelope](t, rec)
	assert.Equal(t, 250, env.Results.Available)
	assert.Equal(t, "250", env.Results.Returned)
	assert.Equal(t, 1, env.Results.Start)
	assert.Len(t, env.Results.Shop, 250)
}

func TestMapPartialResultsAreNotCached(t *testing.T) {
	p := &stubProvider{available: 250, failStart: 101}
	h := newTestServer(t, p, types.ServerConfig{})

	rec := get(t, h, "/api/restaurants/search/map?lat=35.68&lng=139.76")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "1", rec.Header().Get(partialHeader))

	env := decode[envelope](t, rec)
	assert.Equal(t, "150", env.Results.Returned)
}

func TestMapZeroResults(t *testing.T) {
	p := &stubProvider{available: 0}
	h := newTestServer(t, p, types.ServerConfig{})

	rec := get(t, h, "/api/restaurants/search/map?lat=35.68&lng=139.76")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":{"api_version":"1.26","results_available":0,"results_returned":"0","results_start":1,"shop":[]}}`, rec.Body.String())
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"probe failed", errors.New("connection reset"), http.StatusBadGateway, "probe_failed"},
		{"credential rejected", &search.Error{Kind: search.KindUpstreamUnavailable, Err: errors.New("code 2000")}, http.StatusInternalServerError, "upstream_unavailable"},
		{"provider rejected parameter", &search.Error{Kind: search.KindInvalidQuery, Err: errors.New("code 3000")}, http.StatusBadRequest, "invalid_query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{err: tt.err}
			h := newTestServer(t, p, types.ServerConfig{})
			rec := get(t, h, "/api/restaurants/search/map?lat=35.68&lng=139.76")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decode[errorResponse](t, rec).Kind)
		})
	}
}

func TestMapTimeout(t *testing.T) {
	p := &stubProvider{available: 10, block: true}
	h := newTestServer(t, p, types.ServerConfig{RequestTimeout: 20 * time.Millisecond})

	rec := get(t, h, "/api/restaurants/search/map?lat=35.68&lng=139.76")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "cancelled", decode[errorResponse](t, rec).Kind)
}

func TestDetail(t *testing.T) {
	h := newTestServer(t, &stubProvider{}, types.ServerConfig{})

	rec := get(t, h, "/api/restaurants/detail?id=J001")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, detailCacheControl, rec.Header().Get("Cache-Control"))
	env := decode[envelope](t, rec)
	require.Len(t, env.Results.Shop, 1)
	assert.Contains(t, string(env.Results.Shop[0]), `"Detail J001"`)
	assert.Equal(t, "1.26", env.Results.APIVersion)

	rec = get(t, h, "/api/restaurants/detail?id=missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, rec).Kind)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, &stubProvider{}, types.ServerConfig{})

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, &stubProvider{available: 3}, types.ServerConfig{})
	get(t, h, "/api/restaurants/search/list?lat=35.68&lng=139.76")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gourmet_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, &stubProvider{}, types.ServerConfig{})
	rec := get(t, h, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := New(types.ServerConfig{Addr: "127.0.0.1:0", Mode: "test", ShutdownTimeout: time.Second}, &stubProvider{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestUnavailableProviderKeepsHealthCheck(t *testing.T) {
	log := zaptest.NewLogger(t)
	p := search.Unavailable{Err: &search.Error{
		Kind: search.KindUpstreamUnavailable,
		Op:   "hotpepper",
		Err:  errors.New("API key is not configured"),
	}}
	h := New(types.ServerConfig{Mode: "test"}, p, search.NewAggregator(p, types.ProviderConfig{}, log), log).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	for _, target := range []string{
		"/api/restaurants/search/list?lat=35.68&lng=139.76",
		"/api/restaurants/search/map?lat=35.68&lng=139.76",
		"/api/restaurants/search?lat=35.68&lng=139.76",
		"/api/restaurants/detail?id=J001",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, h, target)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "upstream_unavailable", decode[errorResponse](t, rec).Kind)
		})
	}
}
