// Package loader provides the file-format loaders for settle stores.
//
// Each loader parses one settings format into ordered entries and
// registers itself with the root package from an init function, so a
// blank import is enough to enable every stock format:
//
//	import _ "github.com/dshills/settle/loader"
//
// After that, settle.Create picks the loader by file extension. All
// loaders preserve document order for section names and for the keys
// inside each section; structure nested deeper than two levels is
// carried as plain maps.
package loader

import (
	"sort"

	"github.com/dshills/settle"
)

// orderedSection arranges the keys of m into entries: first the keys
// named by order (as they appear in the document), then any stragglers
// in sorted order.
func orderedSection(m map[string]any, order []string) []settle.Entry {
	out := make([]settle.Entry, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if seen[k] {
			continue
		}
		if v, ok := m[k]; ok {
			seen[k] = true
			out = append(out, settle.Entry{Key: k, Value: v})
		}
	}
	for _, k := range sortedMapKeys(m) {
		if !seen[k] {
			out = append(out, settle.Entry{Key: k, Value: m[k]})
		}
	}
	return out
}

// sortedMapKeys returns the keys of m in lexicographic order.
func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
