// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// Range is the provider's discrete search radius class.
type Range string

const (
	Range300m Range = "1"
	Range500m Range = "2"
	Range1km  Range = "3"
	Range2km  Range = "4"
	Range3km  Range = "5"
)

// DefaultRange is used when a query does not name a radius class.
const DefaultRange = Range1km

var rangeMeters = map[Range]int{
	Range300m: 300,
	Range500m: 500,
	Range1km:  1000,
	Range2km:  2000,
	Range3km:  3000,
}

// Valid reports whether r is one of the provider's radius classes.
func (r Range) Valid() bool {
	_, ok := rangeMeters[r]
	return ok
}

// Meters returns the radius in meters, or 1000 for an unknown class.
func (r Range) Meters() int {
	if m, ok := rangeMeters[r]; ok {
		return m
	}
	return 1000
}

// Label returns a short human-readable radius such as "300m" or "2km".
func (r Range) Label() string {
	m := r.Meters()
	if m < 1000 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dkm", m/1000)
}

// ZoomForRadius picks a map zoom level that fits a circle of the given
// radius in meters.
func ZoomForRadius(meters int) int {
	switch {
	case meters <= 300:
		return 16
	case meters <= 1000:
		return 15
	case meters <= 2000:
		return 14
	default:
		return 13
	}
}

// Genre is a provider genre code such as "G001". The empty genre means
// "any".
type Genre string

var genreNames = map[Genre]string{
	"G001": "Izakaya",
	"G002": "Dining bar",
	"G003": "Creative cuisine",
	"G004": "Japanese",
	"G005": "Western",
	"G006": "Italian / French",
	"G007": "Chinese",
	"G008": "Yakiniku / Horumon",
	"G009": "Asian / Ethnic",
	"G010": "International",
	"G011": "Karaoke / Party",
	"G012": "Bar / Cocktail",
	"G013": "Ramen",
	"G014": "Cafe / Sweets",
	"G015": "Other",
	"G016": "Okonomiyaki / Monja",
	"G017": "Korean",
}

// Valid reports whether g is empty or a known genre code.
func (g Genre) Valid() bool {
	if g == "" {
		return true
	}
	_, ok := genreNames[g]
	return ok
}

// Name returns the display name, or "" for the empty or an unknown genre.
func (g Genre) Name() string { return genreNames[g] }

// Budget is a provider budget code such as "B001". The empty budget means
// "any".
type Budget string

var budgetNames = map[Budget]string{
	"B009": "up to 500 yen",
	"B010": "501-1000 yen",
	"B011": "1001-1500 yen",
	"B001": "1501-2000 yen",
	"B002": "2001-3000 yen",
	"B003": "3001-4000 yen",
	"B008": "4001-5000 yen",
	"B004": "5001-7000 yen",
	"B005": "7001-10000 yen",
	"B006": "10001-15000 yen",
	"B012": "15001-20000 yen",
	"B013": "20001 yen and up",
}

// Valid reports whether b is empty or a known budget code.
func (b Budget) Valid() bool {
	if b == "" {
		return true
	}
	_, ok := budgetNames[b]
	return ok
}

// Name returns the display name, or "" for the empty or an unknown budget.
func (b Budget) Name() string { return budgetNames[b] }

// QueryOptions holds the optional filters of a SearchQuery.
type QueryOptions struct {
	Range   Range
	Keyword string
	Genre   Genre
	Budget  Budget
}

// SearchQuery is an immutable geographic search. The zero value has no
// location and is rejected by the aggregator.
type SearchQuery struct {
	lat, lng float64
	located  bool
	rng      Range
	keyword  string
	genre    Genre
	budget   Budget
}

// NewSearchQuery validates its inputs and returns a query centred on
// (lat, lng). An empty Range selects DefaultRange.
func NewSearchQuery(lat, lng float64, opts QueryOptions) (SearchQuery, error) {
	if err := checkCenter(lat, lng); err != nil {
		return SearchQuery{}, newError(KindMissingLocation, "query", err)
	}
	rng := opts.Range
	if rng == "" {
		rng = DefaultRange
	}
	var errs []error
	if !rng.Valid() {
		errs = append(errs, fmt.Errorf("unknown range %q", rng))
	}
	if !opts.Genre.Valid() {
		errs = append(errs, fmt.Errorf("unknown genre %q", opts.Genre))
	}
	if !opts.Budget.Valid() {
		errs = append(errs, fmt.Errorf("unknown budget %q", opts.Budget))
	}
	if len(errs) > 0 {
		return SearchQuery{}, newError(KindInvalidQuery, "query", errors.Join(errs...))
	}
	return SearchQuery{
		lat:     lat,
		lng:     lng,
		located: true,
		rng:     rng,
		keyword: strings.TrimSpace(opts.Keyword),
		genre:   opts.Genre,
		budget:  opts.Budget,
	}, nil
}

func checkCenter(lat, lng float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0):
		return errors.New("coordinates must be finite")
	case lat < -90 || lat > 90:
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	case lng < -180 || lng > 180:
		return fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	return nil
}

func (q SearchQuery) Lat() float64 { return q.lat }
func (q SearchQuery) Lng() float64 { return q.lng }
func (q SearchQuery) Range() Range { return q.rng }
func (q SearchQuery) Keyword() string { return q.keyword }
func (q SearchQuery) Genre() Genre { return q.genre }
func (q SearchQuery) Budget() Budget { return q.budget }
func (q SearchQuery) HasLocation() bool { return q.located }

// Params serializes the query into provider parameters. Empty optional
// fields are omitted. The credential is not included; the provider adds it
// so that parameter sets are safe to log and to use as cache keys.
func (q SearchQuery) Params() url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(q.lat, 'f', -1, 64))
	v.Set("lng", strconv.FormatFloat(q.lng, 'f', -1, 64))
	v.Set("range", string(q.rng))
	v.Set("format", "json")
	if q.keyword != "" {
		v.Set("keyword", q.keyword)
	}
	if q.genre != "" {
		v.Set("genre", string(q.genre))
	}
	if q.budget != "" {
		v.Set("budget", string(q.budget))
	}
	return v
}

// Summary describes the query in one line, e.g.
// `within 1km, Izakaya, "yakitori"`.
func (q SearchQuery) Summary() string {
	parts := []string{"within " + q.rng.Label()}
	if name := q.genre.Name(); name != "" {
		parts = append(parts, name)
	}
	if name := q.budget.Name(); name != "" {
		parts = append(parts, name)
	}
	if q.keyword != "" {
		parts = append(parts, strconv.Quote(q.keyword))
	}
	return strings.Join(parts, ", ")
}

// PageRequest is one provider call: a query plus a 1-based start offset and
// a page size.
type PageRequest struct {
	Query SearchQuery
	Start int
	Count int
}

// Params returns the query parameters plus start and count.
func (r PageRequest) Params() url.Values {
	v := r.Query.Params()
	v.Set("start", strconv.Itoa(r.Start))
	v.Set("count", strconv.Itoa(r.Count))
	return v
}

// Validate checks the paging bounds against the provider's limits.
func (r PageRequest) Validate() error {
	if !r.Query.HasLocation() {
		return newError(KindMissingLocation, "page", errors.New("query has no location"))
	}
	if r.Start < 1 {
		return newError(KindInvalidQuery, "page", fmt.Errorf("start %d must be >= 1", r.Start))
	}
	if r.Count < 1 || r.Count > types.MaxPageSize {
		return newError(KindInvalidQuery, "page", fmt.Errorf("count %d must be between 1 and %d", r.Count, types.MaxPageSize))
	}
	return nil
}

// Partition splits available records into pages of pageSize. Page i starts
// at i*pageSize+1. The last page may return fewer records than requested.
func Partition(q SearchQuery, available, pageSize int) []PageRequest {
	if available <= 0 || pageSize <= 0 {
		return nil
	}
	n := TotalPages(available, pageSize)
	pages := make([]PageRequest, n)
	for i := range pages {
		pages[i] = PageRequest{Query: q, Start: i*pageSize + 1, Count: pageSize}
	}
	return pages
}

// TotalPages returns ceil(available / perPage).
func TotalPages(available, perPage int) int {
	if available <= 0 || perPage <= 0 {
		return 0
	}
	return (available + perPage - 1) / perPage
}

// PageToStart converts a 1-based page number into the provider's 1-based
// start offset. Pages below 1 are treated as page 1.
func PageToStart(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page-1)*perPage + 1
}
