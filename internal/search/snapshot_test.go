package search

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

func TestSnapshotRoundTrip(t *testing.T) {
	q, err := NewSearchQuery(35.6812, 139.7671, QueryOptions{
		Range:   Range2km,
		Keyword: "yakitori",
		Genre:   "G001",
	})
	require.NoError(t, err)

	lat, lng := 35.69, 139.70
	res := AggregateResult{
		APIVersion: "1.26",
		Available:  3,
		Returned:   2,
		Shop: []types.Restaurant{
			{ID: "J1", Name: "One", Lat: &lat, Lng: &lng},
			{ID: "J2", Name: "Two"},
		},
		FailedPages: []int{101},
	}
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("JST", 9*3600))

	path := filepath.Join(t.TempDir(), "snap.yaml")
	require.NoError(t, WriteSnapshot(path, q, res, now))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "4", snap.Query.Range)
	assert.Equal(t, "G001", snap.Query.Genre)
	assert.Empty(t, snap.Query.Budget)
	assert.True(t, snap.Summary.Timestamp.Equal(now))

	got := snap.Result()
	assert.Equal(t, res.Available, got.Available)
	assert.Equal(t, 2, got.Returned)
	assert.Equal(t, []int{101}, got.FailedPages)
	require.Len(t, got.Shop, 2)
	require.True(t, got.Shop[0].HasLocation())
	assert.InDelta(t, 35.69, *got.Shop[0].Lat, 1e-9)
	assert.False(t, got.Shop[1].HasLocation())

	q2, err := snap.Query.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, q.Params(), q2.Params())
}

func TestReadSnapshotErrors(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading snapshot")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query: [unterminated"), 0o644))
	_, err = ReadSnapshot(path)
	assert.ErrorContains(t, err, "parsing snapshot")
}

func TestSnapshotQueryRejectsInvalidCenter(t *testing.T) {
	_, err := SnapshotQuery{Lat: 200, Lng: 0, Range: "3"}.ToQuery()
	assert.ErrorIs(t, err, ErrMissingLocation)
}

func TestSnapshotEmptyResultsIsNotNil(t *testing.T) {
	got := Snapshot{}.Result()
	assert.NotNil(t, got.Shop)
	assert.Equal(t, 0, got.Returned)
}
