// Package tui renders evaluation run results and provides an
// interactive watch view over a running cloud eval.
package tui

import (
	"fmt"
	"strings"

	"github.com/docfoundry/moniker-strip/internal/foundry"
)

// RenderResults renders a completed run and its per-item grader results
// as a styled report.
func RenderResults(theme Theme, run *foundry.Run, items []foundry.OutputItem) string {
	st := newStyles(theme)
	var b strings.Builder

	b.WriteString(st.title.Render(fmt.Sprintf("Run %s", run.ID)))
	b.WriteString("  ")
	b.WriteString(statusLabel(st, run.Status))
	b.WriteString("\n")
	b.WriteString(st.header.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")

	for i, item := range items {
		query := ""
		if q, ok := item.DatasourceItem["query"].(string); ok {
			query = q
		}
		b.WriteString(st.text.Render(fmt.Sprintf("[%d] %s", i+1, truncate(query, 72))))
		b.WriteString("\n")

		for _, r := range item.Results {
			mark := st.pass.Render("✓")
			if !r.Passed {
				mark = st.fail.Render("✗")
			}
			line := fmt.Sprintf("    %s %s: %.1f", mark, st.grader.Render(r.Name), r.Score)
			b.WriteString(line)
			if r.Reason != "" {
				b.WriteString(st.dim.Render("  " + truncate(r.Reason, 60)))
			}
			b.WriteString("\n")
			if errMsg := r.SampleError(); errMsg != "" {
				b.WriteString(st.err.Render("      error: " + errMsg))
				b.WriteString("\n")
			}
		}
	}

	counts := run.ResultCounts
	b.WriteString(st.header.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	summary := fmt.Sprintf("%d total | %s | %s", counts.Total,
		st.pass.Render(fmt.Sprintf("%d passed", counts.Passed)),
		st.fail.Render(fmt.Sprintf("%d failed", counts.Failed)))
	if counts.Errored > 0 {
		summary += " | " + st.err.Render(fmt.Sprintf("%d errored", counts.Errored))
	}
	b.WriteString(summary)
	b.WriteString("\n")

	if run.ReportURL != "" {
		b.WriteString(st.dim.Render("Report: "))
		b.WriteString(st.link.Render(run.ReportURL))
		b.WriteString("\n")
	}

	return b.String()
}

// statusLabel returns a styled run status string.
func statusLabel(st styles, status string) string {
	switch status {
	case foundry.StatusCompleted:
		return st.pass.Render(status)
	case foundry.StatusFailed:
		return st.fail.Render(status)
	default:
		return st.warn.Render(status)
	}
}

// truncate cuts a string to at most maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
