package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/dshills/settle"
)

// TOMLLoader loads settings from TOML sources. Values are decoded by
// go-toml; a second pass over the raw document with the low-level
// parser recovers the order of tables and keys, which the decoded map
// cannot carry. TOML is fully typed, so inference is off by default.
type TOMLLoader struct{}

var _ settle.Loader = TOMLLoader{}

func init() {
	settle.RegisterLoader(TOMLLoader{})
}

// Extensions lists the file extensions this loader claims.
func (TOMLLoader) Extensions() []string { return []string{"toml"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (TOMLLoader) InferByDefault() bool { return false }

// Load parses TOML data into ordered entries.
func (TOMLLoader) Load(data []byte) ([]settle.Entry, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		pe := &settle.ParseError{Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}

	top, inner := tomlOrder(data)
	entries := make([]settle.Entry, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	emit := func(name string) {
		if seen[name] {
			return
		}
		v, ok := doc[name]
		if !ok {
			return
		}
		seen[name] = true
		if m, isMap := v.(map[string]any); isMap {
			entries = append(entries, settle.Entry{Key: name, Value: orderedSection(m, inner[name])})
		} else {
			entries = append(entries, settle.Entry{Key: name, Value: v})
		}
	}
	for _, name := range top {
		emit(name)
	}
	for _, name := range sortedMapKeys(doc) {
		emit(name)
	}
	return entries, nil
}

// tomlOrder walks the document with the low-level parser and records
// the order of top-level names and of the keys directly inside each
// top-level table. Deeper structure is not tracked. Parse errors are
// ignored here; toml.Unmarshal has already vetted the document.
func tomlOrder(data []byte) (top []string, inner map[string][]string) {
	inner = make(map[string][]string)
	seenTop := make(map[string]bool)
	record := func(name string) {
		if !seenTop[name] {
			seenTop[name] = true
			top = append(top, name)
		}
	}
	recordInner := func(section, key string) {
		for _, k := range inner[section] {
			if k == key {
				return
			}
		}
		inner[section] = append(inner[section], key)
	}

	currentTop := ""
	currentDepth := 0
	p := &unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			parts := keyParts(e.Key())
			if len(parts) == 0 {
				continue
			}
			record(parts[0])
			currentTop, currentDepth = parts[0], len(parts)
			if len(parts) > 1 {
				recordInner(parts[0], parts[1])
			}
		case unstable.KeyValue:
			parts := keyParts(e.Key())
			if len(parts) == 0 {
				continue
			}
			switch {
			case currentTop == "":
				// Root-level assignment: a dotted key opens a section,
				// a bare key stays top level.
				record(parts[0])
				if len(parts) > 1 {
					recordInner(parts[0], parts[1])
				}
			case currentDepth == 1:
				recordInner(currentTop, parts[0])
			}
		}
	}
	return top, inner
}

// keyParts collects the dotted-key parts from a key iterator.
func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
