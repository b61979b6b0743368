package model

import "time"

// Verdict is the full output of a judge evaluation of a stripped
// document.
type Verdict struct {
	// File is the path of the judged document.
	File string `json:"file"`

	// Clean indicates the document carries no residual references to
	// the retired moniker.
	Clean bool `json:"clean"`
	// Score is the judge's 1-5 migration-quality score (5 = fully
	// migrated, 1 = still a classic page).
	Score int `json:"score"`
	// ResidualReferences lists verbatim extracts that still mention
	// the retired moniker or its product surface. Empty when clean.
	ResidualReferences []string `json:"residual_references,omitempty"`
	// Reasoning is the judge's step-by-step analysis.
	Reasoning string `json:"reasoning"`

	// Usage tracks token consumption for this evaluation.
	Usage TokenUsage `json:"usage,omitempty"`

	// Content is the stripped document text. Only populated when
	// verbose mode is enabled.
	Content string `json:"content,omitempty"`

	// Model is the LLM model that produced this verdict.
	Model string `json:"model"`
	// Provider is the LLM provider used (e.g., "anthropic", "openai").
	Provider string `json:"provider"`
	// EvaluatedAt is the timestamp when the evaluation was performed.
	EvaluatedAt time.Time `json:"evaluated_at"`
	// DurationMs is the wall-clock time in milliseconds for strip +
	// evaluation.
	DurationMs int64 `json:"duration_ms"`
}

// TokenUsage tracks LLM token consumption for a single evaluation.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// JudgeVerdict is the JSON structure returned by the LLM judge.
// This is parsed from the LLM's response text.
type JudgeVerdict struct {
	Clean              bool     `json:"clean"`
	Score              int      `json:"score"`
	ResidualReferences []string `json:"residual_references,omitempty"`
	Reasoning          string   `json:"reasoning"`

	// Usage is populated by the evaluator, not parsed from the LLM
	// response.
	Usage TokenUsage `json:"-"`
}
