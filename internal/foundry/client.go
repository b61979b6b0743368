// Package foundry submits and tracks documentation-quality evaluation
// runs on the Azure AI Foundry evals API.
//
// The client is thin glue over the service: create an eval with a
// grader criterion, submit a JSONL run of stripped documents, poll
// until the run completes, list the per-item results. It owns no state
// beyond connection configuration; all judgment happens service-side.
//
// Requests go through the OpenAI SDK's raw request escape hatch. The
// SDK's generated evals bindings model the OpenAI service; the Foundry
// variant adds the azure_ai_evaluator testing-criterion type, so this
// package carries its own narrow request/response types instead.
package foundry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run statuses reported by the service. A run is terminal at
// "completed" or "failed".
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Config holds connection settings for the evals API.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint
	// (e.g., "https://resource.openai.azure.com/openai/v1").
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// JudgeModel is the model deployment the grader runs on.
	JudgeModel string
	// PollInterval is the delay between run status checks.
	PollInterval time.Duration
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// Client calls the Foundry evals API.
type Client struct {
	api          openai.Client
	judgeModel   string
	pollInterval time.Duration
}

// NewClient creates a Foundry evals client.
func NewClient(cfg Config) *Client {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	return &Client{
		api:          openai.NewClient(opts...),
		judgeModel:   cfg.JudgeModel,
		pollInterval: pollInterval,
	}
}

// Eval is a created evaluation definition.
type Eval struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Run is the state of an evaluation run.
type Run struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	ReportURL    string       `json:"report_url"`
	ResultCounts ResultCounts `json:"result_counts"`
}

// Terminal reports whether the run has finished, successfully or not.
func (r *Run) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// ResultCounts summarizes per-item outcomes of a run.
type ResultCounts struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// OutputItem is one graded datasource item of a completed run.
type OutputItem struct {
	ID             string         `json:"id"`
	DatasourceItem map[string]any `json:"datasource_item"`
	Results        []ResultEntry  `json:"results"`
}

// ResultEntry is one grader's result for an item.
type ResultEntry struct {
	Name   string          `json:"name"`
	Score  float64         `json:"score"`
	Passed bool            `json:"passed"`
	Reason string          `json:"reason"`
	Sample json.RawMessage `json:"sample,omitempty"`
}

// SampleError extracts the error message from a result's sample, if
// the grader itself errored. Returns "" otherwise.
func (r ResultEntry) SampleError() string {
	if len(r.Sample) == 0 {
		return ""
	}
	var sample struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(r.Sample, &sample); err != nil {
		return ""
	}
	return sample.Error.Message
}

// Item is one datasource item of a run: a stripped document and the
// review question the grader scores it against.
type Item struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

var foundryTracer = otel.Tracer("moniker-strip/foundry")

// CreateEval creates an evaluation definition with a coherence grader
// over query/response items.
func (c *Client) CreateEval(ctx context.Context, name string) (*Eval, error) {
	ctx, span := foundryTracer.Start(ctx, "evals.create",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("eval.name", name)),
	)
	defer span.End()

	body := map[string]any{
		"name": name,
		"data_source_config": map[string]any{
			"type": "custom",
			"item_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":    map[string]any{"type": "string"},
					"response": map[string]any{"type": "string"},
				},
				"required": []string{"query", "response"},
			},
			"include_sample_schema": true,
		},
		"testing_criteria": []any{
			map[string]any{
				"type":           "azure_ai_evaluator",
				"name":           "coherence",
				"evaluator_name": "builtin.coherence",
				"initialization_parameters": map[string]any{
					"deployment_name": c.judgeModel,
				},
				"data_mapping": map[string]any{
					"query":    "{{item.query}}",
					"response": "{{item.response}}",
				},
			},
		},
	}

	var eval Eval
	if err := c.api.Post(ctx, "/evals", body, &eval); err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("create eval: %w", err)
	}
	span.SetAttributes(attribute.String("eval.id", eval.ID))
	return &eval, nil
}

// CreateRun submits a JSONL run with inline file content.
func (c *Client) CreateRun(ctx context.Context, evalID, name string, items []Item) (*Run, error) {
	ctx, span := foundryTracer.Start(ctx, "evals.runs.create",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("eval.id", evalID),
			attribute.Int("eval.items", len(items)),
		),
	)
	defer span.End()

	content := make([]map[string]any, len(items))
	for i, item := range items {
		content[i] = map[string]any{"item": item}
	}

	body := map[string]any{
		"name": name,
		"data_source": map[string]any{
			"type": "jsonl",
			"source": map[string]any{
				"type":    "file_content",
				"content": content,
			},
		},
	}

	var run Run
	if err := c.api.Post(ctx, fmt.Sprintf("/evals/%s/runs", evalID), body, &run); err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("create eval run: %w", err)
	}
	span.SetAttributes(attribute.String("eval.run.id", run.ID))
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, evalID, runID string) (*Run, error) {
	var run Run
	path := fmt.Sprintf("/evals/%s/runs/%s", evalID, runID)
	if err := c.api.Get(ctx, path, nil, &run); err != nil {
		return nil, fmt.Errorf("get eval run: %w", err)
	}
	return &run, nil
}

// ListOutputItems fetches the graded items of a run.
func (c *Client) ListOutputItems(ctx context.Context, evalID, runID string) ([]OutputItem, error) {
	var page struct {
		Data []OutputItem `json:"data"`
	}
	path := fmt.Sprintf("/evals/%s/runs/%s/output_items", evalID, runID)
	if err := c.api.Get(ctx, path, nil, &page); err != nil {
		return nil, fmt.Errorf("list output items: %w", err)
	}
	return page.Data, nil
}

// WaitForCompletion polls until the run reaches a terminal status, then
// fetches its output items. progress, when non-nil, is called with each
// non-terminal status observed.
func (c *Client) WaitForCompletion(ctx context.Context, evalID, runID string, progress func(status string)) (*Run, []OutputItem, error) {
	ctx, span := foundryTracer.Start(ctx, "evals.runs.wait",
		trace.WithAttributes(
			attribute.String("eval.id", evalID),
			attribute.String("eval.run.id", runID),
		),
	)
	defer span.End()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(ctx, evalID, runID)
		if err != nil {
			return nil, nil, err
		}
		if run.Terminal() {
			span.SetAttributes(attribute.String("eval.run.status", run.Status))
			items, err := c.ListOutputItems(ctx, evalID, runID)
			if err != nil {
				return run, nil, err
			}
			return run, items, nil
		}
		if progress != nil {
			progress(run.Status)
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
