// Package moniker implements the conditional-content transformer for
// versioned markdown documentation.
//
// Documentation shared between product versions gates content behind
// moniker blocks (::: moniker range="<tag>" ... ::: moniker-end) and
// declares the versions a page applies to in a monikerRange frontmatter
// key. When a version is retired, its moniker is removed from every
// declaration, its blocks are deleted, and blocks for the surviving
// moniker are optionally unwrapped (content kept, markers removed).
//
// The transformer is a pure function over document text: single forward
// pass, no I/O, no failure mode. Malformed input (unterminated blocks,
// stray end markers, odd frontmatter) degrades to nearest-reasonable
// behavior instead of erroring, so a large imperfect corpus can be
// processed without babysitting.
package moniker

import (
	"regexp"
	"strings"
)

// Action is what the transformer does with a moniker block.
type Action int

const (
	// ActionKeep passes the block through untouched, markers included.
	// This is the implicit action for any tag not in the table.
	ActionKeep Action = iota
	// ActionDrop deletes the block entirely: both markers and every
	// line between them.
	ActionDrop
	// ActionUnwrap keeps the block's content and removes the markers
	// (or keeps them, when Options.KeepMarkers is set).
	ActionUnwrap
)

// Options configures a Transformer.
type Options struct {
	// Purge is the retired moniker whose blocks are deleted and whose
	// tag is removed from monikerRange declarations.
	Purge string
	// Unwrap is the surviving moniker whose block content is kept.
	Unwrap string
	// KeepMarkers keeps the Unwrap moniker's block markers in place
	// instead of removing them.
	KeepMarkers bool
}

// Stats counts what a single Transform call changed.
type Stats struct {
	// BlocksPurged is the number of purge-moniker blocks deleted.
	BlocksPurged int `json:"blocks_purged"`
	// BlocksUnwrapped is the number of unwrap-moniker blocks seen.
	BlocksUnwrapped int `json:"blocks_unwrapped"`
	// MonikersRemoved is the number of purge-tag occurrences removed
	// from monikerRange declarations.
	MonikersRemoved int `json:"monikers_removed"`
	// LinesDropped is the number of input lines absent from the output.
	LinesDropped int `json:"lines_dropped"`
}

// Changed reports whether the transform altered the document.
func (s Stats) Changed() bool {
	return s.BlocksPurged > 0 || s.BlocksUnwrapped > 0 || s.MonikersRemoved > 0 || s.LinesDropped > 0
}

const (
	frontmatterDelim = "---"
	blockStartPrefix = `::: moniker range=`
	blockEndMarker   = `::: moniker-end`
	monikerRangeKey  = "monikerRange:"
)

// monikerRangeRe captures the key prefix, optional quote, value, and
// optional closing quote of a monikerRange declaration. The quote
// characters are preserved on rewrite.
var monikerRangeRe = regexp.MustCompile(`^(\s*monikerRange:\s*)(['"]?)(.+?)(['"]?)\s*$`)

// Transformer rewrites documents according to a per-tag action table.
// Safe for concurrent use; Transform has no mutable state on the
// receiver.
type Transformer struct {
	actions     map[string]Action
	keepMarkers bool
}

// New builds a Transformer from opts. Purge and Unwrap tags that are
// empty are simply absent from the action table.
func New(opts Options) *Transformer {
	actions := make(map[string]Action, 2)
	if opts.Purge != "" {
		actions[opts.Purge] = ActionDrop
	}
	if opts.Unwrap != "" {
		actions[opts.Unwrap] = ActionUnwrap
	}
	return &Transformer{actions: actions, keepMarkers: opts.KeepMarkers}
}

// Transform rewrites a document in one forward pass and reports what
// changed. It is total: any input produces an output, and a document
// with no recognized constructs is returned unchanged.
func (t *Transformer) Transform(content string) (string, Stats) {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var stats Stats

	inFrontmatter := false
	delimiters := 0
	seenBlock := false

	// Open tracked blocks. The format is documented as non-nesting, so
	// depth never exceeds one for well-formed input; the stack makes
	// the stray-end and nested-start cases explicit instead of
	// emergent.
	var stack []Action

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if len(stack) > 0 {
			open := stack[len(stack)-1]
			if trimmed == blockEndMarker {
				stack = stack[:len(stack)-1]
				switch open {
				case ActionDrop:
					stats.LinesDropped++
				case ActionUnwrap:
					if t.keepMarkers {
						out = append(out, line)
					} else {
						stats.LinesDropped++
					}
				}
				continue
			}
			// Everything else inside a tracked block is plain content
			// of that block: further start markers and --- lines do
			// not open blocks or toggle frontmatter.
			switch open {
			case ActionDrop:
				stats.LinesDropped++
			case ActionUnwrap:
				out = append(out, line)
			}
			continue
		}

		// Frontmatter is the first two --- lines of the document, and
		// only before any body block has opened. Later --- lines are
		// body content.
		if trimmed == frontmatterDelim && !seenBlock && delimiters < 2 {
			delimiters++
			inFrontmatter = delimiters == 1
			out = append(out, line)
			continue
		}

		if inFrontmatter {
			if strings.HasPrefix(trimmed, monikerRangeKey) {
				rewritten, removed, drop := t.rewriteMonikerRange(line)
				stats.MonikersRemoved += removed
				if drop {
					stats.LinesDropped++
					continue
				}
				out = append(out, rewritten)
				continue
			}
			out = append(out, line)
			continue
		}

		if tag, ok := parseBlockStart(trimmed); ok {
			switch t.actions[tag] {
			case ActionDrop:
				seenBlock = true
				stack = append(stack, ActionDrop)
				stats.BlocksPurged++
				stats.LinesDropped++
				continue
			case ActionUnwrap:
				seenBlock = true
				stack = append(stack, ActionUnwrap)
				stats.BlocksUnwrapped++
				if t.keepMarkers {
					out = append(out, line)
				} else {
					stats.LinesDropped++
				}
				continue
			}
			// Unrecognized tag: the marker is ordinary content and the
			// block passes through whole, end marker included.
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n"), stats
}

// rewriteMonikerRange removes drop-action tags from a monikerRange
// declaration. Returns the rewritten line, the number of tags removed,
// and whether the whole line should be dropped (no tags left).
//
// The ||-separated list is re-joined with a single-space-padded " || "
// separator; the original quote style (or absence) is preserved. A line
// that does not parse is passed through verbatim.
func (t *Transformer) rewriteMonikerRange(line string) (string, int, bool) {
	m := monikerRangeRe.FindStringSubmatch(line)
	if m == nil {
		return line, 0, false
	}
	prefix, openQuote, value, closeQuote := m[1], m[2], m[3], m[4]

	removed := 0
	kept := make([]string, 0, 4)
	for _, tag := range strings.Split(value, "||") {
		tag = strings.TrimSpace(tag)
		if t.actions[tag] == ActionDrop {
			removed++
			continue
		}
		kept = append(kept, tag)
	}

	if len(kept) == 0 {
		return "", removed, true
	}
	return prefix + openQuote + strings.Join(kept, " || ") + closeQuote, removed, false
}

// parseBlockStart extracts the quoted tag from a trimmed block start
// marker. Trailing text after the closing quote is tolerated, matching
// the authoring tool's loose marker syntax.
func parseBlockStart(trimmed string) (string, bool) {
	rest, ok := strings.CutPrefix(trimmed, blockStartPrefix)
	if !ok || rest == "" {
		return "", false
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return "", false
	}
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return "", false
	}
	return rest[1 : 1+end], true
}
