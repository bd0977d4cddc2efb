package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/config"
	"github.com/jonathan/leadgen/internal/connector"
	"github.com/jonathan/leadgen/internal/db"
	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/pipeline"
	"github.com/jonathan/leadgen/internal/store"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	databaseURL string
	memory      bool
	jsonOutput  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "leadgen",
		Short: "Lead acquisition and deduplication engine",
		Long: `leadgen collects business leads from public directories (Google Maps, Yelp,
Yellow Pages, LinkedIn), deduplicates them and stores them in PostgreSQL.

Configuration can be loaded from a JSON file using --config. Environment
variables (DATABASE_URL, LEADGEN_*) override file values and flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json file")
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "Use a non-persistent in-memory store")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newQueryCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
		newCleanupCmd(opts),
		newSourcesCmd(opts),
		newDedupLogCmd(opts),
		newMigrateCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// errNoDatabase is returned when a command needs Postgres and none is configured.
var errNoDatabase = errors.New("DATABASE_URL environment variable or --database-url flag is required (or use --memory)")

// app is the wired runtime for one command invocation.
type app struct {
	cfg      config.Config
	registry *connector.Registry
	store    store.Store
	db       *db.DB // nil with --memory
	close    func()
}

// loadConfig loads configuration and installs the global logger.
func (o *rootOptions) loadConfig() (config.Config, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}

	flush, err := observability.InitLogging(cfg.LogConfig())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, flush, nil
}

// open wires configuration, logging, the connector registry and the store.
func (o *rootOptions) open(ctx context.Context) (*app, error) {
	cfg, flush, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		registry: connector.DefaultRegistry(cfg.RegistryConfig()),
		close:    flush,
	}

	if o.memory {
		a.store = store.NewMemory()
		return a, nil
	}
	if cfg.DatabaseURL == "" {
		flush()
		return nil, errNoDatabase
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.store = database
	a.db = database
	a.close = func() {
		database.Close()
		flush()
	}
	return a, nil
}

func (a *app) orchestrator() *pipeline.Orchestrator {
	return pipeline.New(a.registry, a.store, pipeline.WithConcurrency(a.cfg.Concurrency))
}
