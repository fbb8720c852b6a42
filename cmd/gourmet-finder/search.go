package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gourmet-finder/internal/search"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List one page of restaurants near a location",
	Long: `Search queries the provider for restaurants within a radius of --lat/--lng
and prints one page of results. Use --page and --count to move through the
list; the map command fetches every match at once.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Int("page", 1, "page number, starting at 1")
	searchCmd.Flags().Int("count", 20, fmt.Sprintf("results per page (at most %d)", types.MaxPageSize))
	addOutputFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the location and filter flags shared by search
// and map.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", math.NaN(), "latitude of the search center (required)")
	cmd.Flags().Float64("lng", math.NaN(), "longitude of the search center (required)")
	cmd.Flags().String("range", string(search.DefaultRange), "radius class: 1=300m 2=500m 3=1km 4=2km 5=3km")
	cmd.Flags().String("keyword", "", "free-text keyword")
	cmd.Flags().String("genre", "", "genre code, e.g. G001 (izakaya)")
	cmd.Flags().String("budget", "", "budget code, e.g. B002")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().Bool("yaml", false, "output results as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// queryFromFlags builds a SearchQuery. Omitted coordinates stay NaN and are
// rejected by NewSearchQuery.
func queryFromFlags(cmd *cobra.Command) (search.SearchQuery, error) {
	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	rng, _ := cmd.Flags().GetString("range")
	keyword, _ := cmd.Flags().GetString("keyword")
	genre, _ := cmd.Flags().GetString("genre")
	budget, _ := cmd.Flags().GetString("budget")

	q, err := search.NewSearchQuery(lat, lng, search.QueryOptions{
		Range:   search.Range(rng),
		Keyword: keyword,
		Genre:   search.Genre(genre),
		Budget:  search.Budget(budget),
	})
	if err != nil && search.KindOf(err) == search.KindMissingLocation {
		return q, fmt.Errorf("--lat and --lng must name a valid location: %w", err)
	}
	return q, err
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 || count > types.MaxPageSize {
		return fmt.Errorf("--count must be between 1 and %d", types.MaxPageSize)
	}
	if page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.provider.Search(cmd.Context(), search.PageRequest{
		Query: q,
		Start: search.PageToStart(page, count),
		Count: count,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	switch {
	case asJSON:
		return search.FormatJSON(types.Envelope{Results: res}, w)
	case asYAML:
		return search.FormatYAML(types.Envelope{Results: res}, w)
	}

	pages := search.TotalPages(res.Available, count)
	fmt.Fprintf(w, "Restaurants %s (page %d of %d)\n\n", q.Summary(), page, max(pages, 1))
	search.FormatTable(res.Shop, w)
	fmt.Fprintf(w, "\n%d of %d restaurants\n", len(res.Shop), res.Available)
	return nil
}
