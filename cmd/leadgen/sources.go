package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/connector"
)

func newSourcesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available lead sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, flush, err := root.loadConfig()
			if err != nil {
				return err
			}
			defer flush()

			sources := connector.DefaultRegistry(cfg.RegistryConfig()).Sources()
			if root.jsonOutput {
				return printJSON(cmd.OutOrStdout(), sources)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tDELAY\tRELIABILITY\tENABLED\tDESCRIPTION")
			for _, s := range sources {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
					s.Name, s.Label, s.Delay, s.Reliability, s.Enabled, s.Description)
			}
			return tw.Flush()
		},
	}
}
