package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes REST endpoints for generating, querying and exporting leads.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if migrate && a.db != nil {
				if err := a.db.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
			}

			if port == 0 {
				port = a.cfg.Server.Port
			}
			srv := server.New(server.Config{
				Port:           port,
				CORSOrigin:     a.cfg.Server.CORSOrigin,
				DefaultLimit:   a.cfg.DefaultLimit,
				DefaultSources: a.cfg.Sources,
			}, a.orchestrator(), a.store, a.registry)

			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (defaults to server.port or PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the database schema before serving")

	return cmd
}
