// Package walker applies a moniker transform across files.
//
// The walker owns all I/O: it reads each document fully, hands the text
// to the transformer, and writes the result out. In-place rewrites go
// through an atomic rename so a crash never leaves a half-written doc.
// The transformer itself stays pure; per-file work is independent, so a
// directory is processed with bounded parallelism.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio"

	"github.com/docfoundry/moniker-strip/internal/moniker"
)

// Options selects the input, destination, and processing mode.
type Options struct {
	// Input is the source file or directory.
	Input string
	// Output is the destination file (single-file mode) or directory
	// tree root (directory mode). Empty means stdout for a single file.
	Output string
	// InPlace rewrites inputs where they are instead of using Output.
	InPlace bool
	// DryRun transforms without writing; results carry the text.
	DryRun bool
	// Parallel bounds concurrent file processing in directory mode.
	Parallel int
}

// FileResult is the outcome for one processed file.
type FileResult struct {
	// Path is the input file path.
	Path string `json:"path"`
	// Output is where the result was written; empty when the text was
	// returned instead (stdout or dry-run mode).
	Output string `json:"output,omitempty"`
	// Stats reports what the transform changed.
	Stats moniker.Stats `json:"stats"`
	// Text is the transformed document. Populated only when Output is
	// empty.
	Text string `json:"-"`
	// Err records a per-file read or write failure. Other files are
	// still processed.
	Err error `json:"-"`
}

// Run processes Options.Input with the given transformer.
//
// Usage-shape errors (missing input, directory without a destination)
// are returned before any file is touched. Per-file I/O failures are
// recorded on the FileResult instead of aborting the walk.
func Run(t *moniker.Transformer, opts Options) ([]FileResult, error) {
	info, err := os.Stat(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("input path %s: %w", opts.Input, err)
	}

	if !info.IsDir() {
		res := processFile(t, opts.Input, singleFileDest(opts))
		return []FileResult{res}, nil
	}

	if !opts.DryRun && !opts.InPlace && opts.Output == "" {
		return nil, fmt.Errorf("--output is required when processing a directory (or use --in-place)")
	}

	files, err := collectMarkdown(opts.Input)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}
	if parallel > len(files) {
		parallel = len(files)
	}

	// Process files with bounded parallelism. Order of results matches
	// the sorted walk order regardless of scheduling.
	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)
	for i, path := range files {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = processFile(t, path, fileDest(opts, path))
		}(i, path)
	}
	wg.Wait()

	return results, nil
}

// singleFileDest resolves the destination for single-file mode.
// Empty means the caller prints the text.
func singleFileDest(opts Options) string {
	switch {
	case opts.DryRun:
		return ""
	case opts.InPlace:
		return opts.Input
	default:
		return opts.Output
	}
}

// fileDest resolves the destination for one file in directory mode.
func fileDest(opts Options, path string) string {
	switch {
	case opts.DryRun:
		return ""
	case opts.InPlace:
		return path
	default:
		rel, err := filepath.Rel(opts.Input, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		return filepath.Join(opts.Output, rel)
	}
}

// processFile reads, transforms, and writes one document.
// Read-fully-then-write: the input is never read and written
// concurrently, which makes in-place mode safe.
func processFile(t *moniker.Transformer, path, dest string) FileResult {
	res := FileResult{Path: path, Output: dest}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	out, stats := t.Transform(string(data))
	res.Stats = stats

	if dest == "" {
		res.Text = out
		return res
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			res.Err = fmt.Errorf("create %s: %w", dir, err)
			return res
		}
	}
	if err := renameio.WriteFile(dest, []byte(out), 0o644); err != nil {
		res.Err = fmt.Errorf("write %s: %w", dest, err)
		return res
	}
	return res
}

// collectMarkdown returns all .md files under root, sorted for
// deterministic output ordering.
func collectMarkdown(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
