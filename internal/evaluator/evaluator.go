// Package evaluator provides LLM-based review of stripped documents.
//
// After the transformer removes a retired moniker, prose can still
// reference the old product surface (portal names, workflows, links)
// outside any moniker block. Detecting that is a judgment call, so it
// goes to an LLM: Go code builds the prompt and parses the response,
// the model decides whether the page reads as fully migrated.
package evaluator

import (
	"context"

	"github.com/docfoundry/moniker-strip/internal/model"
)

// Evaluator sends a stripped document to an LLM and returns a verdict.
type Evaluator interface {
	// Evaluate sends the document text to an LLM and returns the verdict.
	Evaluate(ctx context.Context, content string) (*model.JudgeVerdict, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name used for evaluation.
	Model() string
}
