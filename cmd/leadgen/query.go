package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/store"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var (
		filters store.Filters
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List stored leads, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			leads, err := a.store.Query(cmd.Context(), filters, limit)
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return printJSON(cmd.OutOrStdout(), leads)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintLeads(leads, 0)
			return nil
		},
	}

	filterFlags(cmd, &filters)
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum leads to list (0 for all)")

	return cmd
}
