package evaluator

import (
	_ "embed"
	"strings"
)

// SystemPrompt is the system-level instruction for the LLM judge.
// Loaded from prompts/system.md at compile time.
//
//go:embed prompts/system.md
var SystemPrompt string

// UserPromptTemplate is the user-level prompt template. The retired
// moniker name replaces {{moniker}} and the document text is appended.
// Loaded from prompts/user.md at compile time.
//
//go:embed prompts/user.md
var UserPromptTemplate string

// buildUserPrompt fills the template and appends the document.
func buildUserPrompt(moniker, content string) string {
	return strings.ReplaceAll(UserPromptTemplate, "{{moniker}}", moniker) + content
}

// stripMarkdownFences removes a surrounding ```json ... ``` fence from
// an LLM response. Models often wrap JSON output in fences despite
// instructions not to.
func stripMarkdownFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	// Drop the opening fence line (``` or ```json).
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
