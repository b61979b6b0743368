package foundry

import (
	"fmt"

	"github.com/docfoundry/moniker-strip/internal/walker"
)

// ItemsFromResults builds run items from dry-run walker results: each
// successfully stripped document becomes one query/response pair for
// the grader. Failed files are skipped; the caller reports them.
func ItemsFromResults(moniker string, results []walker.FileResult) []Item {
	items := make([]Item, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		items = append(items, Item{
			Query:    fmt.Sprintf("Review the migrated page %s for leftover references to the retired moniker %s.", r.Path, moniker),
			Response: r.Text,
		})
	}
	return items
}
