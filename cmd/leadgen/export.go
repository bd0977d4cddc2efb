package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/store"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		filters store.Filters
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching leads to a CSV file",
		Long: `Writes every lead matching the filters to a CSV file. Without --output the
file is named leads_export_YYYYMMDD_HHMMSS.csv in the current directory.
No file is written when nothing matches.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			path, err := store.ExportCSV(cmd.Context(), a.store, filters, output)
			if err != nil {
				var empty *store.EmptyResultError
				if errors.As(err, &empty) {
					fmt.Fprintln(cmd.OutOrStdout(), "No leads found to export")
					return nil
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported leads to %s\n", path)
			return nil
		},
	}

	filterFlags(cmd, &filters)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path")

	return cmd
}
