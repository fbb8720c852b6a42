// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/cache"
	"github.com/pdiddy/gourmet-finder/internal/metrics"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

const cacheKeyPrefix = "gourmet:"

// CachedProvider serves provider responses from a cache when possible.
// Cache failures are logged and treated as misses; only successful
// responses are stored.
type CachedProvider struct {
	next      Provider
	cache     cache.Cache
	searchTTL time.Duration
	detailTTL time.Duration
	log       *zap.Logger
}

// NewCachedProvider wraps next with c using the TTLs in cfg.
func NewCachedProvider(next Provider, c cache.Cache, cfg types.CacheConfig, log *zap.Logger) *CachedProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProvider{
		next:      next,
		cache:     c,
		searchTTL: cfg.SearchTTL,
		detailTTL: cfg.DetailTTL,
		log:       log,
	}
}

func (p *CachedProvider) Search(ctx context.Context, req PageRequest) (types.SearchResults, error) {
	key := searchCacheKey(req)
	var res types.SearchResults
	if p.lookup(ctx, "search", key, &res) {
		return res, nil
	}
	res, err := p.next.Search(ctx, req)
	if err != nil {
		return res, err
	}
	p.store(ctx, key, res, p.searchTTL)
	return res, nil
}

func (p *CachedProvider) Detail(ctx context.Context, id string) (types.SearchResults, error) {
	key := cacheKeyPrefix + "detail:" + id
	var res types.SearchResults
	if id != "" && p.lookup(ctx, "detail", key, &res) && len(res.Shop) > 0 {
		return res, nil
	}
	res, err := p.next.Detail(ctx, id)
	if err != nil {
		return res, err
	}
	p.store(ctx, key, res, p.detailTTL)
	return res, nil
}

func (p *CachedProvider) lookup(ctx context.Context, kind, key string, dst any) bool {
	data, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		p.log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (p *CachedProvider) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("encoding cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, key, data, ttl); err != nil {
		p.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// searchCacheKey hashes the encoded parameters, which are sorted by name and
// exclude the credential.
func searchCacheKey(req PageRequest) string {
	sum := sha256.Sum256([]byte(req.Params().Encode()))
	return cacheKeyPrefix + "search:" + hex.EncodeToString(sum[:])
}
