package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docfoundry/moniker-strip/internal/moniker"
	"github.com/docfoundry/moniker-strip/internal/walker"
)

var (
	flagOutput        string
	flagInPlace       bool
	flagKeepMarkers   bool
	flagPurgeMoniker  string
	flagUnwrapMoniker string
	flagParallel      int
	flagSummary       bool
)

// stripSummary aggregates per-file stats for the --summary report.
type stripSummary struct {
	Files           int `json:"files"`
	Changed         int `json:"changed"`
	Failed          int `json:"failed"`
	BlocksPurged    int `json:"blocks_purged"`
	BlocksUnwrapped int `json:"blocks_unwrapped"`
	MonikersRemoved int `json:"monikers_removed"`
	LinesDropped    int `json:"lines_dropped"`
}

var stripCmd = &cobra.Command{
	Use:   "strip <path>",
	Short: "Strip retired moniker content from a file or directory",
	Long: `Strip retired moniker content from a markdown file or directory tree.

A single file without --output or --in-place writes the result to stdout.
A directory requires --output (mirrors the tree) or --in-place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		if flagPurgeMoniker != "" {
			cfg.PurgeMoniker = flagPurgeMoniker
		}
		if flagUnwrapMoniker != "" {
			cfg.UnwrapMoniker = flagUnwrapMoniker
		}
		if flagParallel > 0 {
			cfg.Parallel = flagParallel
		}

		tel, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		ctx, span := tel.Tracer.Start(ctx, "strip")
		defer span.End()

		t := moniker.New(moniker.Options{
			Purge:       cfg.PurgeMoniker,
			Unwrap:      cfg.UnwrapMoniker,
			KeepMarkers: flagKeepMarkers,
		})

		results, err := walker.Run(t, walker.Options{
			Input:    args[0],
			Output:   flagOutput,
			InPlace:  flagInPlace,
			Parallel: cfg.Parallel,
		})
		if err != nil {
			return err
		}

		var summary stripSummary
		for _, r := range results {
			summary.Files++
			if r.Err != nil {
				summary.Failed++
				fmt.Fprintf(os.Stderr, "warning: %v\n", r.Err)
				continue
			}
			if r.Stats.Changed() {
				summary.Changed++
			}
			summary.BlocksPurged += r.Stats.BlocksPurged
			summary.BlocksUnwrapped += r.Stats.BlocksUnwrapped
			summary.MonikersRemoved += r.Stats.MonikersRemoved
			summary.LinesDropped += r.Stats.LinesDropped
			tel.Metrics.RecordStrip(ctx, r.Stats)

			// Single file without a destination: result goes to stdout.
			if r.Output == "" {
				fmt.Print(r.Text)
			}
		}

		if flagSummary {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
		}

		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Files)
		}
		return nil
	},
}

func init() {
	stripCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file, or directory root when input is a directory")
	stripCmd.Flags().BoolVar(&flagInPlace, "in-place", false, "rewrite input files in place")
	stripCmd.Flags().BoolVar(&flagKeepMarkers, "keep-markers", false, "keep block markers around unwrapped content")
	stripCmd.Flags().StringVar(&flagPurgeMoniker, "purge-moniker", "", "moniker whose blocks are deleted (default: foundry-classic)")
	stripCmd.Flags().StringVar(&flagUnwrapMoniker, "unwrap-moniker", "", "moniker whose content is kept (default: foundry)")
	stripCmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent files in directory mode (default: 8)")
	stripCmd.Flags().BoolVar(&flagSummary, "summary", false, "print an aggregate JSON summary to stderr")
	rootCmd.AddCommand(stripCmd)
}
