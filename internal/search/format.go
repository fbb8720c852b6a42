// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// FormatTable writes shops as a human-readable table to w.
func FormatTable(shops []types.Restaurant, w io.Writer) {
	if len(shops) == 0 {
		fmt.Fprintln(w, "No restaurants found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-30s  %-18s  %-16s  %s\n",
		"#", "ID", "Name", "Genre", "Budget", "Access")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range shops {
		fmt.Fprintf(w, "%-4d  %-12s  %-30s  %-18s  %-16s  %s\n",
			i+1, r.ID, pad(r.Name, 30), pad(r.Genre.Name, 18), pad(r.Budget.Name, 16), truncate(r.Access, 40))
	}
}

// FormatSummary writes the result counts, flagging partial results.
func FormatSummary(res AggregateResult, w io.Writer) {
	fmt.Fprintf(w, "\n%d of %d restaurants", res.Returned, res.Available)
	if res.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", res.DuplicatesRemoved)
	}
	if res.Partial() {
		fmt.Fprintf(w, "; %d page(s) failed, results are incomplete", len(res.FailedPages))
	}
	fmt.Fprintln(w)
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// FormatYAML writes v as YAML to w.
func FormatYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// FormatDetail writes a single shop as labelled lines.
func FormatDetail(r types.Restaurant, w io.Writer) {
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-10s %s\n", label+":", value)
		}
	}
	line("Name", r.Name)
	line("ID", r.ID)
	line("Genre", r.Genre.Name)
	line("Budget", r.Budget.Name)
	line("Average", r.Budget.Average)
	line("Address", r.Address)
	line("Access", r.Access)
	line("Open", r.Open)
	line("Closed", r.Close)
	if r.HasLocation() {
		line("Location", fmt.Sprintf("%.6f, %.6f", *r.Lat, *r.Lng))
	}
	line("URL", r.URLs.PC)
	line("Coupon", r.CouponURLs.PC)
}

// pad truncates or space-pads s to exactly width runes.
func pad(s string, width int) string {
	s = truncate(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
