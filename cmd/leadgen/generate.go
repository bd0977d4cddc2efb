package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/pipeline"
	"github.com/jonathan/leadgen/internal/types"
)

type generateOptions struct {
	criteria types.SearchCriteria
	limit    int
	sources  []string
	noDedupe bool
	quiet    bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Collect, deduplicate and store leads for a city and niche",
		Long: `Runs every requested source concurrently, merges their candidates,
removes duplicates within the batch and inserts the rest into the store,
skipping leads that are already stored.

Example:
  leadgen generate --city Springfield --country USA --niche bakery --limit 20 --sources test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.criteria.City, "city", "", "City to search (required)")
	cmd.Flags().StringVar(&opts.criteria.Country, "country", "", "Country to search (required)")
	cmd.Flags().StringVar(&opts.criteria.Niche, "niche", "", "Business niche, e.g. bakery (required)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Total lead limit (defaults to the configured default_limit)")
	cmd.Flags().StringSliceVarP(&opts.sources, "sources", "s", nil, "Sources to use (names or labels); defaults to all enabled")
	cmd.Flags().BoolVar(&opts.noDedupe, "no-dedupe", false, "Skip in-batch deduplication")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print progress messages")

	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("country")
	_ = cmd.MarkFlagRequired("niche")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	ctx := cmd.Context()

	a, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	limit := opts.limit
	if limit == 0 {
		limit = a.cfg.DefaultLimit
	}
	sources := opts.sources
	if len(sources) == 0 {
		sources = a.cfg.Sources
	}

	req := pipeline.Request{
		Criteria: opts.criteria,
		Limit:    limit,
		Sources:  sources,
		Dedupe:   !opts.noDedupe,
	}
	if !opts.quiet {
		req.OnProgress = func(message string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "→ %s\n", message)
		}
	}

	report, err := a.orchestrator().GenerateLeads(ctx, req)
	if err != nil {
		return err
	}

	if root.jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRunReport(report)
	}

	if report.Status == types.RunStatusError {
		return fmt.Errorf("lead generation failed: %s", report.Error)
	}
	return nil
}
