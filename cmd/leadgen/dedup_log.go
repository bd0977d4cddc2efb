package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/observability"
)

func newDedupLogCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dedup-log",
		Short: "List insert and cleanup audit entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.DedupLog(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintDedupLog(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum entries to list (0 for all)")

	return cmd
}
