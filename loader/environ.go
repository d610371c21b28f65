package loader

import (
	"os"
	"sort"
	"strings"

	"github.com/dshills/settle"
)

// Environ collects prefixed process environment variables into entries
// for settle.New. The prefix should include its trailing underscore
// (e.g. "MYAPP_"). The first name segment after the prefix becomes the
// section and the rest the key, both lowercased, so
// MYAPP_FILES_SOURCE_FORMAT lands in section "files" under key
// "source_format". A variable with a single segment stays a flat entry
// and is bucketed into the global section by New. Values are raw
// strings for store inference; names are sorted so the result is
// deterministic.
func Environ(prefix string) []settle.Entry {
	type pair struct{ name, value string }
	var pairs []pair
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, prefix) {
			continue
		}
		eq := strings.Index(kv, "=")
		if eq <= len(prefix) {
			continue
		}
		pairs = append(pairs, pair{name: kv[:eq], value: kv[eq+1:]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	var entries []settle.Entry
	index := make(map[string]int)
	for _, p := range pairs {
		rest := strings.TrimPrefix(p.name, prefix)
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) == 1 || parts[1] == "" {
			entries = append(entries, settle.Entry{Key: strings.ToLower(parts[0]), Value: p.value})
			continue
		}
		section := strings.ToLower(parts[0])
		key := strings.ToLower(parts[1])
		if i, ok := index[section]; ok {
			sec := entries[i].Value.([]settle.Entry)
			entries[i].Value = append(sec, settle.Entry{Key: key, Value: p.value})
			continue
		}
		index[section] = len(entries)
		entries = append(entries, settle.Entry{Key: section, Value: []settle.Entry{{Key: key, Value: p.value}}})
	}
	return entries
}
