package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docfoundry/moniker-strip/internal/config"
	"github.com/docfoundry/moniker-strip/internal/evaluator"
	"github.com/docfoundry/moniker-strip/internal/otel"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "moniker-strip",
	Short: "Strip retired moniker content from versioned markdown docs",
	Long: `moniker-strip removes retired-moniker content from markdown documentation.

Blocks fenced for the purge moniker are deleted, blocks fenced for the
unwrap moniker are kept with their markers removed, and monikerRange
frontmatter declarations lose the purged tag.

The judge and eval commands send stripped documents to an LLM reviewer
(direct API or Azure AI Foundry evals) to check for residual references.`,
}

// Execute runs the root command.
func Execute() {
	otel.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: anthropic, openai (default: anthropic)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model or deployment name (default: claude-sonnet-4-5 for anthropic, gpt-4o-mini for openai)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens (default: 4096; increase for reasoning models)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "include stripped document content in judge output")
}

// resolveConfig loads configuration and overlays any explicit flags.
// Flags always win over file and environment values.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
	return cfg, nil
}

// initTelemetry sets up OTEL from the resolved config. Returns a no-op
// Telemetry when no endpoint is configured.
func initTelemetry(ctx context.Context, cfg *config.Config) (*otel.Telemetry, error) {
	return otel.Init(ctx, otel.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
}

// getEvaluator returns the configured LLM evaluator.
func getEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	switch cfg.Provider {
	case "anthropic":
		return newAnthropicEvaluator(cfg)
	case "openai":
		return newOpenAIEvaluator(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", cfg.Provider)
	}
}

// newAnthropicEvaluator creates an Anthropic evaluator with the resolved config.
func newAnthropicEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set MONIKER_STRIP_API_KEY, AZURE_OPENAI_API_KEY, or ANTHROPIC_API_KEY")
	}

	// Azure AI Foundry needs both "api-key" (Azure) and "x-api-key"
	// (Anthropic SDK default) headers.
	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	return evaluator.NewAnthropicEvaluator(evaluator.AnthropicConfig{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Model:        model,
		Moniker:      cfg.PurgeMoniker,
		MaxTokens:    cfg.MaxTokens,
		ExtraHeaders: extraHeaders,
	}), nil
}

// newOpenAIEvaluator creates an OpenAI evaluator with the resolved config.
func newOpenAIEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set MONIKER_STRIP_API_KEY, AZURE_OPENAI_API_KEY, or OPENAI_API_KEY")
	}

	extraHeaders := map[string]string{}
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		extraHeaders["api-key"] = cfg.APIKey
	}

	return evaluator.NewOpenAIEvaluator(evaluator.OpenAIConfig{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Model:        model,
		Moniker:      cfg.PurgeMoniker,
		MaxTokens:    cfg.MaxTokens,
		ExtraHeaders: extraHeaders,
	}), nil
}
