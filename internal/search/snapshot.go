// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// Snapshot is the on-disk form of a bulk fetch. A saved snapshot can be
// reloaded and rendered without calling the provider again.
type Snapshot struct {
	Query   SnapshotQuery      `yaml:"query"`
	Results []types.Restaurant `yaml:"results"`
	Summary SnapshotSummary    `yaml:"summary"`
}

// SnapshotQuery stores the query parameters in a serializable form.
type SnapshotQuery struct {
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
	Range   string  `yaml:"range"`
	Keyword string  `yaml:"keyword,omitempty"`
	Genre   string  `yaml:"genre,omitempty"`
	Budget  string  `yaml:"budget,omitempty"`
}

// SnapshotSummary stores counts and a timestamp.
type SnapshotSummary struct {
	APIVersion        string    `yaml:"api_version,omitempty"`
	Available         int       `yaml:"available"`
	Returned          int       `yaml:"returned"`
	FailedPages       []int     `yaml:"failed_pages,omitempty"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteSnapshot saves a query and its aggregate result to a YAML file.
func WriteSnapshot(path string, q SearchQuery, res AggregateResult, now time.Time) error {
	snap := Snapshot{
		Query: SnapshotQuery{
			Lat:     q.Lat(),
			Lng:     q.Lng(),
			Range:   string(q.Range()),
			Keyword: q.Keyword(),
			Genre:   string(q.Genre()),
			Budget:  string(q.Budget()),
		},
		Results: res.Shop,
		Summary: SnapshotSummary{
			APIVersion:        res.APIVersion,
			Available:         res.Available,
			Returned:          res.Returned,
			FailedPages:       res.FailedPages,
			DuplicatesRemoved: res.DuplicatesRemoved,
			Timestamp:         now.UTC(),
		},
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a previously saved snapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &snap, nil
}

// ToQuery rebuilds the SearchQuery, validating it as NewSearchQuery does.
func (s SnapshotQuery) ToQuery() (SearchQuery, error) {
	return NewSearchQuery(s.Lat, s.Lng, QueryOptions{
		Range:   Range(s.Range),
		Keyword: s.Keyword,
		Genre:   Genre(s.Genre),
		Budget:  Budget(s.Budget),
	})
}

// Result rebuilds the AggregateResult stored in the snapshot.
func (s Snapshot) Result() AggregateResult {
	shop := s.Results
	if shop == nil {
		shop = []types.Restaurant{}
	}
	return AggregateResult{
		APIVersion:        s.Summary.APIVersion,
		Available:         s.Summary.Available,
		Returned:          len(shop),
		Shop:              shop,
		FailedPages:       s.Summary.FailedPages,
		DuplicatesRemoved: s.Summary.DuplicatesRemoved,
	}
}
