package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/observability"
)

func newCleanupCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove duplicate leads already in the store, keeping the oldest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.store.CleanupDuplicates(cmd.Context())
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintCleanup(&result)
			return nil
		},
	}
}
