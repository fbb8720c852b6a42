package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := newError(KindProbeFailed, "probe", errors.New("connection reset"))
	assert.Equal(t, "probe: probe failed: connection reset", err.Error())
	assert.Equal(t, "not found", (&Error{Kind: KindNotFound}).Error())
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", newError(KindAllPagesFailed, "fan-out", context.DeadlineExceeded))

	assert.ErrorIs(t, err, ErrAllPagesFailed)
	assert.NotErrorIs(t, err, ErrProbeFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindAllPagesFailed, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorKindSlug(t *testing.T) {
	assert.Equal(t, "missing_location", KindMissingLocation.Slug())
	assert.Equal(t, "upstream_unavailable", KindUpstreamUnavailable.Slug())
	assert.Equal(t, "unknown", ErrorKind(99).Slug())
}
