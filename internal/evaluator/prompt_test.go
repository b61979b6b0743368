package evaluator

import (
	"strings"
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"clean": true, "score": 5}`,
			want:  `{"clean": true, "score": 5}`,
		},
		{
			name:  "fenced json block",
			input: "```json\n{\"clean\": true}\n```",
			want:  `{"clean": true}`,
		},
		{
			name:  "fenced without language",
			input: "```\n{\"clean\": true}\n```",
			want:  `{"clean": true}`,
		},
		{
			name:  "fenced with whitespace",
			input: "  ```json\n{\"score\": 4}\n```  ",
			want:  `{"score": 4}`,
		},
		{
			name:  "multiline JSON in fences",
			input: "```json\n{\n  \"clean\": false,\n  \"score\": 2\n}\n```",
			want:  "{\n  \"clean\": false,\n  \"score\": 2\n}",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only fences no content",
			input: "```json\n```",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripMarkdownFences(tt.input)
			if got != tt.want {
				t.Errorf("stripMarkdownFences(%q) =\n  %q\nwant:\n  %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	got := buildUserPrompt("foundry-classic", "# Page\n")
	if !strings.Contains(got, "foundry-classic") {
		t.Errorf("moniker not substituted: %q", got)
	}
	if strings.Contains(got, "{{moniker}}") {
		t.Errorf("placeholder left in prompt: %q", got)
	}
	if !strings.HasSuffix(got, "# Page\n") {
		t.Errorf("document not appended: %q", got)
	}
}

func TestPromptsLoaded(t *testing.T) {
	// Verify that embedded prompts are non-empty
	if SystemPrompt == "" {
		t.Error("SystemPrompt is empty (embed directive may have failed)")
	}
	if UserPromptTemplate == "" {
		t.Error("UserPromptTemplate is empty (embed directive may have failed)")
	}
}
