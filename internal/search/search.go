// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the restaurant provider and assembles results:
// single pages for list views, detail lookups, and the bulk fetch that
// retrieves every match for map views by fanning out bounded page requests.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/gourmet-finder/internal/metrics"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// Provider is the upstream restaurant directory. HotPepper talks to the
// real service; CachedProvider decorates any Provider.
//
// Detail returns the provider's results block for a single-shop lookup,
// with at least one entry in Shop.
type Provider interface {
	Search(ctx context.Context, req PageRequest) (types.SearchResults, error)
	Detail(ctx context.Context, id string) (types.SearchResults, error)
}

// AggregateResult is the merged output of a bulk fetch.
type AggregateResult struct {
	APIVersion string

	// Available is the provider's count at probe time. It can be stale by
	// the time the pages are fetched.
	Available int

	// Returned always equals len(Shop) and never exceeds Available.
	Returned int

	// Shop is ordered by provider offset, then by position within a page.
	Shop []types.Restaurant

	// FailedPages lists the start offsets of pages that contributed nothing.
	FailedPages []int

	DuplicatesRemoved int
}

// Partial reports whether any page failed.
func (r AggregateResult) Partial() bool { return len(r.FailedPages) > 0 }

// Envelope renders the result in the provider's response shape.
func (r AggregateResult) Envelope() types.Envelope {
	shop := r.Shop
	if shop == nil {
		shop = []types.Restaurant{}
	}
	return types.Envelope{Results: types.SearchResults{
		APIVersion: r.APIVersion,
		Available:  r.Available,
		Returned:   types.Count(r.Returned),
		Start:      1,
		Shop:       shop,
	}}
}

// Aggregator turns one "fetch everything" request into provider-legal page
// requests. It holds no per-call state; concurrent FetchAll calls are
// independent.
type Aggregator struct {
	provider    Provider
	pageSize    int
	fanOutLimit int
	log         *zap.Logger
}

// NewAggregator returns an Aggregator over p. cfg.PageSizeLimit is clamped
// to [1, types.MaxPageSize]; a nil logger is replaced by a no-op logger.
func NewAggregator(p Provider, cfg types.ProviderConfig, log *zap.Logger) *Aggregator {
	size := cfg.PageSizeLimit
	if size <= 0 || size > types.MaxPageSize {
		size = types.MaxPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		provider:    p,
		pageSize:    size,
		fanOutLimit: cfg.FanOutLimit,
		log:         log,
	}
}

// PageSize returns the page size used for fan-out requests.
func (a *Aggregator) PageSize() int { return a.pageSize }

// FetchAll probes the provider for the total count, fetches every page
// concurrently, and merges them in offset order with duplicates removed.
//
// It fails only when the query has no location, the probe fails, or every
// page fails. Individual page failures reduce Returned and are listed in
// FailedPages.
func (a *Aggregator) FetchAll(ctx context.Context, q SearchQuery) (AggregateResult, error) {
	if !q.HasLocation() {
		return AggregateResult{}, newError(KindMissingLocation, "fetch all", errors.New("query has no geographic center"))
	}
	if err := ctx.Err(); err != nil {
		return AggregateResult{}, newError(KindCancelled, "probe", err)
	}

	probe, err := a.provider.Search(ctx, PageRequest{Query: q, Start: 1, Count: 1})
	if err != nil {
		return AggregateResult{}, probeError(ctx, err)
	}

	available := probe.Available
	if available == 0 {
		return AggregateResult{APIVersion: probe.APIVersion, Shop: []types.Restaurant{}}, nil
	}

	pages := Partition(q, available, a.pageSize)
	metrics.FanOutPages.Observe(float64(len(pages)))
	a.log.Debug("fanning out",
		zap.Int("available", available),
		zap.Int("pages", len(pages)),
		zap.Int("page_size", a.pageSize))

	outcomes := a.fanOut(ctx, pages)

	var failed []int
	var errs []error
	for i, o := range outcomes {
		if o.err == nil {
			continue
		}
		failed = append(failed, pages[i].Start)
		errs = append(errs, fmt.Errorf("page at %d: %w", pages[i].Start, o.err))
		a.log.Warn("page request failed",
			zap.Int("start", pages[i].Start),
			zap.Int("count", pages[i].Count),
			zap.Error(o.err))
	}
	metrics.FanOutFailedPages.Add(float64(len(failed)))

	if len(failed) == len(pages) {
		if ctx.Err() != nil {
			return AggregateResult{}, newError(KindCancelled, "fan-out", ctx.Err())
		}
		return AggregateResult{}, newError(KindAllPagesFailed, "fan-out", errors.Join(errs...))
	}

	shop, dups := merge(outcomes)
	metrics.DuplicatesRemoved.Add(float64(dups))
	if dups > 0 {
		a.log.Info("removed duplicate records across pages", zap.Int("duplicates", dups))
	}
	// Listings added between probe and fan-out would push the merge past
	// the probed count.
	if len(shop) > available {
		shop = shop[:available]
	}

	return AggregateResult{
		APIVersion:        probe.APIVersion,
		Available:         available,
		Returned:          len(shop),
		Shop:              shop,
		FailedPages:       failed,
		DuplicatesRemoved: dups,
	}, nil
}

type pageOutcome struct {
	shop []types.Restaurant
	err  error
}

// fanOut issues every page request and waits for all of them. Each
// goroutine writes only its own slot and never returns an error, so one
// failed page does not cancel its siblings.
func (a *Aggregator) fanOut(ctx context.Context, pages []PageRequest) []pageOutcome {
	outcomes := make([]pageOutcome, len(pages))
	var g errgroup.Group
	if a.fanOutLimit > 0 {
		g.SetLimit(a.fanOutLimit)
	}
	for i, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = pageOutcome{err: newError(KindCancelled, "page", err)}
				return nil
			}
			res, err := a.provider.Search(ctx, p)
			outcomes[i] = pageOutcome{shop: res.Shop, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// merge concatenates page results in offset order and drops records whose
// identifier was already seen, keeping the first occurrence. Identifiers are
// non-empty; validateBody rejects pages that carry an empty one.
func merge(outcomes []pageOutcome) ([]types.Restaurant, int) {
	total := 0
	for _, o := range outcomes {
		total += len(o.shop)
	}
	merged := make([]types.Restaurant, 0, total)
	seen := make(map[string]struct{}, total)
	removed := 0
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, r := range o.shop {
			if _, ok := seen[r.ID]; ok {
				removed++
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, removed
}

// probeError keeps client, credential, and cancellation failures
// recognisable and reports everything else as a failed probe.
func probeError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return newError(KindCancelled, "probe", ctx.Err())
	}
	switch KindOf(err) {
	case KindUpstreamUnavailable, KindInvalidQuery, KindCancelled:
		return err
	}
	return newError(KindProbeFailed, "probe", err)
}
