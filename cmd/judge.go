package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docfoundry/moniker-strip/internal/model"
	"github.com/docfoundry/moniker-strip/internal/moniker"
)

var flagJudgeKeepMarkers bool

var judgeCmd = &cobra.Command{
	Use:   "judge <file>",
	Short: "Strip a document and have an LLM review the result",
	Long: `Strip a single markdown document in memory and send the result to an
LLM judge, which checks for residual references to the retired moniker.

Prints the verdict as JSON. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		eval, err := getEvaluator(cfg)
		if err != nil {
			return err
		}

		tel, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		ctx, span := tel.Tracer.Start(ctx, "judge")
		defer span.End()

		start := time.Now()

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		t := moniker.New(moniker.Options{
			Purge:       cfg.PurgeMoniker,
			Unwrap:      cfg.UnwrapMoniker,
			KeepMarkers: flagJudgeKeepMarkers,
		})
		stripped, stats := t.Transform(string(data))
		tel.Metrics.RecordStrip(ctx, stats)

		judged, err := eval.Evaluate(ctx, stripped)
		if err != nil {
			return fmt.Errorf("evaluation failed for %q: %w", path, err)
		}
		tel.Metrics.RecordTokens(ctx, eval.Provider(), eval.Model(),
			judged.Usage.InputTokens, judged.Usage.OutputTokens)

		verdict := model.Verdict{
			File:               path,
			Clean:              judged.Clean,
			Score:              judged.Score,
			ResidualReferences: judged.ResidualReferences,
			Reasoning:          judged.Reasoning,
			Usage:              judged.Usage,
			Model:              eval.Model(),
			Provider:           eval.Provider(),
			EvaluatedAt:        time.Now().UTC(),
			DurationMs:         time.Since(start).Milliseconds(),
		}
		if flagVerbose {
			verdict.Content = stripped
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	},
}

func init() {
	judgeCmd.Flags().BoolVar(&flagJudgeKeepMarkers, "keep-markers", false, "keep block markers around unwrapped content")
	rootCmd.AddCommand(judgeCmd)
}
