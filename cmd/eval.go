package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docfoundry/moniker-strip/internal/config"
	"github.com/docfoundry/moniker-strip/internal/foundry"
	"github.com/docfoundry/moniker-strip/internal/moniker"
	"github.com/docfoundry/moniker-strip/internal/tui"
	"github.com/docfoundry/moniker-strip/internal/walker"
)

var (
	flagEvalName  string
	flagEvalTheme string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run cloud evaluations over stripped documents",
	Long: `Submit stripped documents to the Azure AI Foundry evals API for
service-side grading, or fetch the results of a previous run.`,
}

var evalRunCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Strip documents and submit them as a cloud eval run",
	Long: `Strip a markdown file or directory in memory, submit the results as a
cloud eval run, wait for the grader to finish, and print the report.

Nothing is written to disk; stripping happens in dry-run mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		tel, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		ctx, span := tel.Tracer.Start(ctx, "eval.run")
		defer span.End()

		t := moniker.New(moniker.Options{
			Purge:  cfg.PurgeMoniker,
			Unwrap: cfg.UnwrapMoniker,
		})
		results, err := walker.Run(t, walker.Options{
			Input:    args[0],
			DryRun:   true,
			Parallel: cfg.Parallel,
		})
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", r.Err)
			}
		}

		items := foundry.ItemsFromResults(cfg.PurgeMoniker, results)
		if len(items) == 0 {
			return fmt.Errorf("no documents to evaluate under %s", args[0])
		}

		client, err := newFoundryClient(cfg)
		if err != nil {
			return err
		}

		name := flagEvalName
		if name == "" {
			name = "moniker-strip-review"
		}

		eval, err := client.CreateEval(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "created eval %s\n", eval.ID)

		run, err := client.CreateRun(ctx, eval.ID, name, items)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "created run %s (%d items)\n", run.ID, len(items))

		run, outputs, err := client.WaitForCompletion(ctx, eval.ID, run.ID, func(status string) {
			fmt.Fprintf(os.Stderr, "run %s: %s\n", run.ID, status)
		})
		if err != nil {
			return err
		}
		tel.Metrics.RecordEvalRun(ctx, run.Status)

		fmt.Print(tui.RenderResults(tui.ThemeByName(flagEvalTheme), run, outputs))

		if run.Status == foundry.StatusFailed {
			return fmt.Errorf("eval run %s failed", run.ID)
		}
		return nil
	},
}

var evalResultsCmd = &cobra.Command{
	Use:   "results <eval-id> <run-id>",
	Short: "Fetch and print the results of an eval run",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		evalID, runID := args[0], args[1]

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		client, err := newFoundryClient(cfg)
		if err != nil {
			return err
		}

		run, err := client.GetRun(ctx, evalID, runID)
		if err != nil {
			return err
		}
		items, err := client.ListOutputItems(ctx, evalID, runID)
		if err != nil {
			return err
		}

		fmt.Print(tui.RenderResults(tui.ThemeByName(flagEvalTheme), run, items))
		return nil
	},
}

// newFoundryClient builds an evals client from the resolved config. The
// evals API always speaks the OpenAI surface, so an Azure resource name
// maps to the OpenAI-shaped endpoint regardless of the judge provider.
func newFoundryClient(cfg *config.Config) (*foundry.Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" || !config.IsAzureEndpoint(baseURL) {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			baseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
		}
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no evals endpoint configured. Set --base-url or AZURE_RESOURCE_NAME")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set MONIKER_STRIP_API_KEY or AZURE_OPENAI_API_KEY")
	}

	extraHeaders := map[string]string{}
	if config.IsAzureEndpoint(baseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	return foundry.NewClient(foundry.Config{
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		JudgeModel:   cfg.Model,
		PollInterval: cfg.PollIntervalDuration,
		ExtraHeaders: extraHeaders,
	}), nil
}

func init() {
	evalCmd.PersistentFlags().StringVar(&flagEvalTheme, "theme", "dark", "report color theme: dark, light")
	evalRunCmd.Flags().StringVar(&flagEvalName, "name", "", "eval and run name (default: moniker-strip-review)")
	evalCmd.AddCommand(evalRunCmd)
	evalCmd.AddCommand(evalResultsCmd)
	rootCmd.AddCommand(evalCmd)
}
