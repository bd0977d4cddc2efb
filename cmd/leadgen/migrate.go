package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the leads and dedup_log tables and their indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root.memory {
				return fmt.Errorf("migrate requires a database; --memory has no schema")
			}

			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
			return nil
		},
	}
}
