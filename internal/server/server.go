// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes restaurant search over HTTP: page-mode lists,
// bulk map results, and single-shop detail.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

const defaultShutdownTimeout = 10 * time.Second

// Server routes HTTP requests to a Provider for page and detail lookups and
// to an Aggregator for bulk map results.
type Server struct {
	cfg      types.ServerConfig
	provider search.Provider
	agg      *search.Aggregator
	log      *zap.Logger
	engine   *gin.Engine
}

// New builds the router. The Aggregator should wrap the same Provider so
// that both paths share the cache and the rate limiter.
func New(cfg types.ServerConfig, p search.Provider, agg *search.Aggregator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:      cfg,
		provider: p,
		agg:      agg,
		log:      log,
	}

	r := gin.New()
	r.Use(requestID(), recovery(log), observe(log), requestTimeout(cfg.RequestTimeout))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/restaurants")
	api.GET("/search/list", s.handleList("range"))
	api.GET("/search/map", s.handleMap)
	api.GET("/search", s.handleList("radius"))
	api.GET("/detail", s.handleDetail)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no such route", Kind: search.KindNotFound.Slug()})
	})

	s.engine = r
	return s
}

// Handler returns the router, for tests and for embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on cfg.Addr until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down http server", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
