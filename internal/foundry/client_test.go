package foundry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docfoundry/moniker-strip/internal/walker"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		JudgeModel:   "gpt-5-mini",
		PollInterval: 10 * time.Millisecond,
	})
}

func TestCreateEval(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/evals", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "eval_123", "name": "strip-review"})
	}))

	eval, err := client.CreateEval(context.Background(), "strip-review")
	require.NoError(t, err)
	require.Equal(t, "eval_123", eval.ID)

	require.Equal(t, "strip-review", gotBody["name"])
	dsc, ok := gotBody["data_source_config"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "custom", dsc["type"])
	require.Equal(t, true, dsc["include_sample_schema"])

	criteria, ok := gotBody["testing_criteria"].([]any)
	require.True(t, ok)
	require.Len(t, criteria, 1)
	criterion := criteria[0].(map[string]any)
	require.Equal(t, "azure_ai_evaluator", criterion["type"])
	require.Equal(t, "builtin.coherence", criterion["evaluator_name"])
	initParams := criterion["initialization_parameters"].(map[string]any)
	require.Equal(t, "gpt-5-mini", initParams["deployment_name"])
}

func TestCreateRun(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/evals/eval_123/runs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "run_456", "status": StatusQueued})
	}))

	items := []Item{{Query: "review doc.md", Response: "# stripped"}}
	run, err := client.CreateRun(context.Background(), "eval_123", "run", items)
	require.NoError(t, err)
	require.Equal(t, "run_456", run.ID)
	require.Equal(t, StatusQueued, run.Status)

	ds := gotBody["data_source"].(map[string]any)
	require.Equal(t, "jsonl", ds["type"])
	source := ds["source"].(map[string]any)
	require.Equal(t, "file_content", source["type"])
	content := source["content"].([]any)
	require.Len(t, content, 1)
	item := content[0].(map[string]any)["item"].(map[string]any)
	require.Equal(t, "review doc.md", item["query"])
	require.Equal(t, "# stripped", item["response"])
}

func TestWaitForCompletion(t *testing.T) {
	var polls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/evals/eval_123/runs/run_456":
			status := StatusRunning
			if polls.Add(1) >= 3 {
				status = StatusCompleted
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":            "run_456",
				"status":        status,
				"report_url":    "https://example.com/report",
				"result_counts": map[string]int{"total": 1, "passed": 1},
			})
		case "/evals/eval_123/runs/run_456/output_items":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{
						"id":              "item_1",
						"datasource_item": map[string]any{"query": "review doc.md"},
						"results": []map[string]any{
							{"name": "coherence", "score": 4.0, "passed": true, "reason": "reads cleanly"},
						},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	var statuses []string
	run, items, err := client.WaitForCompletion(context.Background(), "eval_123", "run_456", func(status string) {
		statuses = append(statuses, status)
	})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, run.Status)
	require.Equal(t, "https://example.com/report", run.ReportURL)
	require.Equal(t, 1, run.ResultCounts.Passed)
	require.Len(t, items, 1)
	require.Equal(t, "coherence", items[0].Results[0].Name)
	require.True(t, items[0].Results[0].Passed)
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		require.Equal(t, StatusRunning, s)
	}
}

func TestWaitForCompletionHonorsContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "run_456", "status": StatusRunning})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, _, err := client.WaitForCompletion(ctx, "eval_123", "run_456", nil)
	require.Error(t, err)
}

func TestResultEntrySampleError(t *testing.T) {
	entry := ResultEntry{Sample: json.RawMessage(`{"error": {"message": "deployment not found"}}`)}
	require.Equal(t, "deployment not found", entry.SampleError())

	require.Empty(t, ResultEntry{}.SampleError())
	require.Empty(t, ResultEntry{Sample: json.RawMessage(`{"output": "fine"}`)}.SampleError())
}

func TestItemsFromResults(t *testing.T) {
	results := []walker.FileResult{
		{Path: "docs/a.md", Text: "# A"},
		{Path: "docs/bad.md", Err: context.DeadlineExceeded},
		{Path: "docs/b.md", Text: "# B"},
	}
	items := ItemsFromResults("foundry-classic", results)
	require.Len(t, items, 2)
	require.Contains(t, items[0].Query, "docs/a.md")
	require.Contains(t, items[0].Query, "foundry-classic")
	require.Equal(t, "# A", items[0].Response)
	require.Equal(t, "# B", items[1].Response)
}
