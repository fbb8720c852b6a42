// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

const (
	searchCacheControl = "max-age=300, s-maxage=600"
	detailCacheControl = "max-age=3600, s-maxage=7200"

	partialHeader = "X-Partial-Results"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleList serves one provider page. rangeParam names the radius query
// parameter, which differs between the list route and the legacy route.
func (s *Server) handleList(rangeParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := queryFromRequest(c, rangeParam)
		if err != nil {
			s.fail(c, err)
			return
		}
		start, count, err := pageFromRequest(c)
		if err != nil {
			s.fail(c, err)
			return
		}

		res, err := s.provider.Search(c.Request.Context(), search.PageRequest{Query: q, Start: start, Count: count})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Header("Cache-Control", searchCacheControl)
		c.JSON(http.StatusOK, types.Envelope{Results: res})
	}
}

// handleMap returns every match for the query in one response.
func (s *Server) handleMap(c *gin.Context) {
	q, err := queryFromRequest(c, "range")
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.agg.FetchAll(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}

	if res.Partial() {
		s.log.Warn("serving partial map results",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("available", res.Available),
			zap.Int("returned", res.Returned),
			zap.Ints("failed_pages", res.FailedPages))
		c.Header("Cache-Control", "no-store")
		c.Header(partialHeader, strconv.Itoa(len(res.FailedPages)))
	} else {
		c.Header("Cache-Control", searchCacheControl)
	}
	c.JSON(http.StatusOK, res.Envelope())
}

func (s *Server) handleDetail(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		s.fail(c, &search.Error{Kind: search.KindInvalidQuery, Op: "request", Err: errors.New("id is required")})
		return
	}

	res, err := s.provider.Detail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", detailCacheControl)
	c.JSON(http.StatusOK, types.Envelope{Results: res})
}

// fail writes err as a JSON error with the status for its kind.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	kind := search.KindOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request error",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("kind", kind.Slug()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Kind: kind.Slug()})
}

func statusFor(err error) int {
	switch search.KindOf(err) {
	case search.KindMissingLocation, search.KindInvalidQuery:
		return http.StatusBadRequest
	case search.KindNotFound:
		return http.StatusNotFound
	case search.KindCancelled:
		return http.StatusGatewayTimeout
	case search.KindProbeFailed, search.KindAllPagesFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
