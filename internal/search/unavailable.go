// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// Unavailable is a Provider that fails every call with Err. The server runs
// over it when the real provider cannot be built, so health checks still
// answer while search requests report the cause.
type Unavailable struct {
	Err error
}

func (u Unavailable) Search(context.Context, PageRequest) (types.SearchResults, error) {
	return types.SearchResults{}, u.Err
}

func (u Unavailable) Detail(context.Context, string) (types.SearchResults, error) {
	return types.SearchResults{}, u.Err
}
