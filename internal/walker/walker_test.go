package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docfoundry/moniker-strip/internal/moniker"
)

const sampleDoc = `---
monikerRange: "foundry || foundry-classic"
---
::: moniker range="foundry-classic"
old
::: moniker-end
::: moniker range="foundry"
new
::: moniker-end
`

const strippedDoc = `---
monikerRange: "foundry"
---
new
`

func newTransformer() *moniker.Transformer {
	return moniker.New(moniker.Options{Purge: "foundry-classic", Unwrap: "foundry"})
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunSingleFileToStdout(t *testing.T) {
	root := writeTree(t, map[string]string{"doc.md": sampleDoc})

	results, err := Run(newTransformer(), Options{Input: filepath.Join(root, "doc.md")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Equal(t, strippedDoc, results[0].Text)
	require.Equal(t, 1, results[0].Stats.BlocksPurged)
}

func TestRunSingleFileToOutput(t *testing.T) {
	root := writeTree(t, map[string]string{"doc.md": sampleDoc})
	out := filepath.Join(root, "out", "doc.md")

	results, err := Run(newTransformer(), Options{
		Input:  filepath.Join(root, "doc.md"),
		Output: out,
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Empty(t, results[0].Text)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, strippedDoc, string(data))
}

func TestRunInPlace(t *testing.T) {
	root := writeTree(t, map[string]string{"doc.md": sampleDoc})
	path := filepath.Join(root, "doc.md")

	results, err := Run(newTransformer(), Options{Input: path, InPlace: true})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strippedDoc, string(data))
}

func TestRunDirectoryMirrorsTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":            sampleDoc,
		"sub/b.md":        sampleDoc,
		"sub/deep/c.md":   sampleDoc,
		"sub/ignored.txt": "not markdown",
	})
	out := filepath.Join(t.TempDir(), "out")

	results, err := Run(newTransformer(), Options{Input: root, Output: out, Parallel: 4})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, rel := range []string{"a.md", "sub/b.md", "sub/deep/c.md"} {
		data, err := os.ReadFile(filepath.Join(out, rel))
		require.NoError(t, err, rel)
		require.Equal(t, strippedDoc, string(data), rel)
	}
	_, err = os.Stat(filepath.Join(out, "sub/ignored.txt"))
	require.True(t, os.IsNotExist(err), "non-markdown file copied")
}

func TestRunDirectoryResultsSorted(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.md": sampleDoc,
		"a.md": sampleDoc,
		"m.md": sampleDoc,
	})

	results, err := Run(newTransformer(), Options{Input: root, DryRun: true, Parallel: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, filepath.Join(root, "a.md"), results[0].Path)
	require.Equal(t, filepath.Join(root, "m.md"), results[1].Path)
	require.Equal(t, filepath.Join(root, "z.md"), results[2].Path)
	for _, r := range results {
		require.Equal(t, strippedDoc, r.Text)
	}
}

func TestRunUsageErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := Run(newTransformer(), Options{Input: filepath.Join(t.TempDir(), "nope.md")})
		require.Error(t, err)
	})

	t.Run("directory without destination", func(t *testing.T) {
		root := writeTree(t, map[string]string{"doc.md": sampleDoc})
		_, err := Run(newTransformer(), Options{Input: root})
		require.Error(t, err)
	})
}

func TestRunPerFileErrorDoesNotAbort(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	root := writeTree(t, map[string]string{
		"good.md": sampleDoc,
		"bad.md":  sampleDoc,
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "bad.md"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "bad.md"), 0o644) })

	results, err := Run(newTransformer(), Options{Input: root, DryRun: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)         // bad.md sorts first
	require.NoError(t, results[1].Err)       // good.md still processed
	require.Equal(t, strippedDoc, results[1].Text)
}
