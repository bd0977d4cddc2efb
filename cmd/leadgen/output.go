package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/store"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// filterFlags registers the shared lead filter flags on cmd.
func filterFlags(cmd *cobra.Command, f *store.Filters) {
	cmd.Flags().StringVar(&f.City, "city", "", "Filter by city (case-insensitive substring)")
	cmd.Flags().StringVar(&f.Country, "country", "", "Filter by country (case-insensitive substring)")
	cmd.Flags().StringVar(&f.Niche, "niche", "", "Filter by niche (case-insensitive substring)")
	cmd.Flags().StringVar(&f.Source, "source", "", "Filter by source label (exact)")
}
