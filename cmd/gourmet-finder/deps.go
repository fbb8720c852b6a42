// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/cache"
	"github.com/pdiddy/gourmet-finder/internal/httputil"
	"github.com/pdiddy/gourmet-finder/internal/logger"
	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/internal/secrets"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      types.Config
	log      *zap.Logger
	cache    cache.Cache
	provider search.Provider
	agg      *search.Aggregator
}

// newApp loads the configuration and builds the provider stack. See wire.
func newApp(ctx context.Context, serving bool) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return wire(ctx, cfg, log, serving)
}

// wire builds HotPepper behind the throttled client, wrapped by the response
// cache, with the aggregator on top.
//
// When serving, a provider that reports itself unavailable (a missing API
// key) is replaced by search.Unavailable so the server still starts and each
// search request fails with that error. Other commands fail immediately.
func wire(ctx context.Context, cfg types.Config, log *zap.Logger, serving bool) (*app, error) {
	var p search.Provider
	hp, err := search.NewHotPepper(cfg.Provider, httputil.NewClient(cfg.Provider.HTTPConfig))
	switch {
	case err == nil:
		p = hp
	case serving && search.KindOf(err) == search.KindUpstreamUnavailable:
		log.Warn("provider unavailable, search requests will fail",
			zap.String("hint", "set HOTPEPPER_API_KEY or "+secrets.DefaultDir+secrets.APIKeyFile),
			zap.Error(err))
		p = search.Unavailable{Err: err}
	default:
		return nil, fmt.Errorf("%w (set HOTPEPPER_API_KEY or %s%s)", err, secrets.DefaultDir, secrets.APIKeyFile)
	}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	log.Debug("provider ready",
		zap.String("base_url", cfg.Provider.BaseURL),
		zap.String("cache", string(cfg.Cache.Backend)),
		zap.Int("page_size", cfg.Provider.PageSizeLimit))

	if hp != nil && cfg.Cache.Backend != types.CacheNone {
		p = search.NewCachedProvider(hp, c, cfg.Cache, log.Named("cache"))
	}

	return &app{
		cfg:      cfg,
		log:      log,
		cache:    c,
		provider: p,
		agg:      search.NewAggregator(p, cfg.Provider, log.Named("aggregator")),
	}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn("closing cache", zap.Error(err))
	}
	_ = a.log.Sync()
}
