package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/observability"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate store statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintStats(stats)
			return nil
		},
	}
}
