package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/docfoundry/moniker-strip/internal/moniker"
)

const meterName = "moniker-strip"

// Metrics holds all OTEL metric instruments for moniker-strip.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Strip counters
	DocumentsProcessed    metric.Int64Counter
	BlocksPurged          metric.Int64Counter
	BlocksUnwrapped       metric.Int64Counter
	DeclarationsRewritten metric.Int64Counter

	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Eval run counter (partitioned by terminal status)
	EvalRuns metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- Strip counters ---

	m.DocumentsProcessed, err = meter.Int64Counter("strip.documents",
		metric.WithDescription("Total documents processed by the transformer"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}

	m.BlocksPurged, err = meter.Int64Counter("strip.blocks.purged",
		metric.WithDescription("Total purge-moniker blocks deleted"),
		metric.WithUnit("{block}"))
	if err != nil {
		return nil, err
	}

	m.BlocksUnwrapped, err = meter.Int64Counter("strip.blocks.unwrapped",
		metric.WithDescription("Total unwrap-moniker blocks processed"),
		metric.WithUnit("{block}"))
	if err != nil {
		return nil, err
	}

	m.DeclarationsRewritten, err = meter.Int64Counter("strip.declarations.rewritten",
		metric.WithDescription("Total monikerRange declarations with the purge tag removed"))
	if err != nil {
		return nil, err
	}

	// --- LLM token counters ---

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed by the judge"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed by the judge"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	// --- Eval run counter ---

	m.EvalRuns, err = meter.Int64Counter("eval.runs",
		metric.WithDescription("Total cloud eval runs reaching a terminal status"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStrip records one transformed document's stats.
func (m *Metrics) RecordStrip(ctx context.Context, stats moniker.Stats) {
	if m == nil {
		return
	}
	m.DocumentsProcessed.Add(ctx, 1)
	m.BlocksPurged.Add(ctx, int64(stats.BlocksPurged))
	m.BlocksUnwrapped.Add(ctx, int64(stats.BlocksUnwrapped))
	m.DeclarationsRewritten.Add(ctx, int64(stats.MonikersRemoved))
}

// RecordTokens records judge token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordEvalRun records a cloud eval run reaching a terminal status.
func (m *Metrics) RecordEvalRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.EvalRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("eval.run.status", status),
	))
}
