package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gourmet-finder/internal/search"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Fetch every restaurant near a location",
	Long: `Map retrieves all restaurants matching the query in one pass. The provider
is asked for the total count first, then every page is fetched concurrently
and merged in provider order with duplicates removed.

If some pages fail the remaining results are still printed and the summary
notes that they are incomplete. Use --out to save the result as a YAML
snapshot and --from to render a saved snapshot without calling the provider.`,
	RunE: runMap,
}

func init() {
	addQueryFlags(mapCmd)
	addOutputFlags(mapCmd)
	mapCmd.Flags().String("out", "", "write a YAML snapshot of the result to this file")
	mapCmd.Flags().String("from", "", "render a saved snapshot instead of querying")
	mapCmd.MarkFlagsMutuallyExclusive("out", "from")

	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		snap, err := search.ReadSnapshot(from)
		if err != nil {
			return err
		}
		q, err := snap.Query.ToQuery()
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", from, err)
		}
		fmt.Fprintf(os.Stderr, "Loaded snapshot from %s (saved %s)\n", from, snap.Summary.Timestamp.Format(time.RFC3339))
		return renderMap(cmd, q, snap.Result())
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.agg.FetchAll(cmd.Context(), q)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := search.WriteSnapshot(out, q, res, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved snapshot to %s\n", out)
	}
	return renderMap(cmd, q, res)
}

func renderMap(cmd *cobra.Command, q search.SearchQuery, res search.AggregateResult) error {
	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	switch {
	case asJSON:
		return search.FormatJSON(res.Envelope(), w)
	case asYAML:
		return search.FormatYAML(res.Envelope(), w)
	}
	printMapHeader(w, q)
	search.FormatTable(res.Shop, w)
	search.FormatSummary(res, w)
	return nil
}

func printMapHeader(w io.Writer, q search.SearchQuery) {
	fmt.Fprintf(w, "Restaurants %s of (%.5f, %.5f), map zoom %d\n\n",
		q.Summary(), q.Lat(), q.Lng(), search.ZoomForRadius(q.Range().Meters()))
}
