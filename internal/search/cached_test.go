package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gourmet-finder/internal/cache"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

func newRedisCache(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedis(types.CacheConfig{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func cacheConfig() types.CacheConfig {
	return types.CacheConfig{SearchTTL: 5 * time.Minute, DetailTTL: time.Hour}
}

func TestCachedProviderSearchHit(t *testing.T) {
	c, mr := newRedisCache(t)
	inner := &fakeProvider{available: 150}
	p := NewCachedProvider(inner, c, cacheConfig(), nil)

	req := PageRequest{Query: tokyoStation(t), Start: 101, Count: 100}
	first, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.totalRequests())
	assert.Equal(t, ids(first.Shop), ids(second.Shop))
	assert.Equal(t, first.Available, second.Available)

	key := searchCacheKey(req)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))
}

func TestCachedProviderDistinctPagesDistinctKeys(t *testing.T) {
	q := tokyoStation(t)
	a := searchCacheKey(PageRequest{Query: q, Start: 1, Count: 100})
	b := searchCacheKey(PageRequest{Query: q, Start: 101, Count: 100})
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "gourmet:search:")
}

func TestCachedProviderSearchExpiry(t *testing.T) {
	c, mr := newRedisCache(t)
	inner := &fakeProvider{available: 10}
	p := NewCachedProvider(inner, c, cacheConfig(), nil)
	req := PageRequest{Query: tokyoStation(t), Start: 1, Count: 10}

	_, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	mr.FastForward(6 * time.Minute)
	_, err = p.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.totalRequests())
}

func TestCachedProviderDoesNotStoreFailures(t *testing.T) {
	c, _ := newRedisCache(t)
	inner := &fakeProvider{available: 200}
	inner.page = func(PageRequest) (types.SearchResults, error) {
		return types.SearchResults{}, errors.New("HTTP 503")
	}
	p := NewCachedProvider(inner, c, cacheConfig(), nil)
	req := PageRequest{Query: tokyoStation(t), Start: 1, Count: 100}

	_, err := p.Search(context.Background(), req)
	require.Error(t, err)
	_, err = p.Search(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 2, inner.totalRequests())
}

func TestCachedProviderCacheFailureFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := cache.NewRedis(types.CacheConfig{Addr: mr.Addr()})
	defer c.Close()
	mr.Close()

	inner := &fakeProvider{available: 5}
	p := NewCachedProvider(inner, c, cacheConfig(), nil)

	res, err := p.Search(context.Background(), PageRequest{Query: tokyoStation(t), Start: 1, Count: 5})
	require.NoError(t, err)
	assert.Len(t, res.Shop, 5)
	assert.Equal(t, 1, inner.totalRequests())
}

func TestCachedProviderZeroTTLSkipsStore(t *testing.T) {
	c, mr := newRedisCache(t)
	inner := &fakeProvider{available: 5}
	p := NewCachedProvider(inner, c, types.CacheConfig{}, nil)
	req := PageRequest{Query: tokyoStation(t), Start: 1, Count: 5}

	_, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, mr.Exists(searchCacheKey(req)))
}

func TestCachedProviderDetail(t *testing.T) {
	c, mr := newRedisCache(t)
	inner := &fakeProvider{}
	p := NewCachedProvider(inner, c, cacheConfig(), nil)

	res, err := p.Detail(context.Background(), "J000001")
	require.NoError(t, err)
	require.Len(t, res.Shop, 1)
	assert.Equal(t, "J000001", res.Shop[0].ID)
	assert.True(t, mr.Exists("gourmet:detail:J000001"))
	assert.Equal(t, time.Hour, mr.TTL("gourmet:detail:J000001"))

	cached, err := p.Detail(context.Background(), "J000001")
	require.NoError(t, err)
	assert.Equal(t, "1.26", cached.APIVersion)
	assert.Equal(t, res.Shop, cached.Shop)
}

func TestCachedProviderDiscardsCorruptEntries(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, mr.Set("gourmet:detail:J000002", "{not json"))

	p := NewCachedProvider(&fakeProvider{}, c, cacheConfig(), nil)
	res, err := p.Detail(context.Background(), "J000002")
	require.NoError(t, err)
	require.Len(t, res.Shop, 1)
	assert.Equal(t, "J000002", res.Shop[0].ID)
}

func TestAggregatorOverCachedProvider(t *testing.T) {
	c, _ := newRedisCache(t)
	inner := &fakeProvider{available: 250}
	agg := NewAggregator(NewCachedProvider(inner, c, cacheConfig(), nil), types.ProviderConfig{}, nil)

	first, err := agg.FetchAll(context.Background(), tokyoStation(t))
	require.NoError(t, err)
	second, err := agg.FetchAll(context.Background(), tokyoStation(t))
	require.NoError(t, err)

	assert.Equal(t, 4, inner.totalRequests())
	assert.Equal(t, ids(first.Shop), ids(second.Shop))
}

func TestCachedProviderWithNop(t *testing.T) {
	inner := &fakeProvider{available: 3}
	p := NewCachedProvider(inner, cache.Nop{}, cacheConfig(), nil)
	req := PageRequest{Query: tokyoStation(t), Start: 1, Count: 3}

	_, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	_, err = p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.totalRequests())
}
