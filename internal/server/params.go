// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// defaultListCount is the page size of list views when count is omitted.
const defaultListCount = 20

// queryFromRequest reads lat, lng, keyword, genre, budget, and the radius
// class from rangeParam. An omitted radius selects search.DefaultRange.
func queryFromRequest(c *gin.Context, rangeParam string) (search.SearchQuery, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return search.SearchQuery{}, &search.Error{
			Kind: search.KindMissingLocation,
			Op:   "request",
			Err:  errors.New("lat and lng are required"),
		}
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return search.SearchQuery{}, locationError("lat", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return search.SearchQuery{}, locationError("lng", lngStr)
	}

	return search.NewSearchQuery(lat, lng, search.QueryOptions{
		Range:   search.Range(c.Query(rangeParam)),
		Keyword: c.Query("keyword"),
		Genre:   search.Genre(c.Query("genre")),
		Budget:  search.Budget(c.Query("budget")),
	})
}

func locationError(name, value string) error {
	return &search.Error{
		Kind: search.KindMissingLocation,
		Op:   "request",
		Err:  fmt.Errorf("%s %q is not a number", name, value),
	}
}

// pageFromRequest reads count and either start or page. count defaults to
// 20 and is capped at the provider maximum; start takes precedence over
// page.
func pageFromRequest(c *gin.Context) (start, count int, err error) {
	count = defaultListCount
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, invalidParam("count", v)
		}
		count = min(n, types.MaxPageSize)
	}

	start = 1
	if v := c.Query("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, invalidParam("start", v)
		}
		start = n
	} else if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, invalidParam("page", v)
		}
		start = search.PageToStart(n, count)
	}
	return start, count, nil
}

func invalidParam(name, value string) error {
	return &search.Error{
		Kind: search.KindInvalidQuery,
		Op:   "request",
		Err:  fmt.Errorf("%s must be a positive integer, got %q", name, value),
	}
}
