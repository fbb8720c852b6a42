package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/gourmet-finder/internal/search"
)

var detailCmd = &cobra.Command{
	Use:   "detail ID",
	Short: "Show one restaurant by its provider ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

func init() {
	addOutputFlags(detailCmd)
	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.provider.Detail(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	r := res.Shop[0]

	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	switch {
	case asJSON:
		return search.FormatJSON(r, w)
	case asYAML:
		return search.FormatYAML(r, w)
	}
	search.FormatDetail(r, w)
	return nil
}
