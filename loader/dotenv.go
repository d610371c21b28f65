package loader

import (
	"strings"

	"github.com/joho/godotenv"

	"github.com/dshills/settle"
)

// DotenvLoader loads settings from dotenv sources. godotenv supplies
// the value semantics (quoting, escapes, variable expansion); a line
// scan over the raw source recovers key order, which the parsed map
// cannot carry. Entries are flat, so New buckets them into the global
// section. Inference is on by default.
type DotenvLoader struct{}

var _ settle.Loader = DotenvLoader{}

func init() {
	settle.RegisterLoader(DotenvLoader{})
}

// Extensions lists the file extensions this loader claims.
func (DotenvLoader) Extensions() []string { return []string{"env"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (DotenvLoader) InferByDefault() bool { return true }

// Load parses dotenv data into ordered entries.
func (DotenvLoader) Load(data []byte) ([]settle.Entry, error) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, &settle.ParseError{Message: err.Error(), Err: err}
	}

	entries := make([]settle.Entry, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.TrimPrefix(trimmed, "export ")
		eq := strings.Index(trimmed, "=")
		if eq <= 0 {
			continue
		}
		// Lines inside multiline values can look like assignments; only
		// keys the parser actually produced count.
		key := strings.TrimSpace(trimmed[:eq])
		value, ok := values[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, settle.Entry{Key: key, Value: value})
	}
	for _, key := range sortedMapKeys(values) {
		if !seen[key] {
			entries = append(entries, settle.Entry{Key: key, Value: values[key]})
		}
	}
	return entries, nil
}
