package loader

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/settle"
)

// JSONLoader loads settings from JSON sources using gjson, whose
// ForEach visits members in document order. Integral number literals
// become int64 and the rest float64, so seeds and chunk sizes survive
// as integers instead of drifting into floats.
type JSONLoader struct{}

var _ settle.Loader = JSONLoader{}

func init() {
	settle.RegisterLoader(JSONLoader{})
}

// Extensions lists the file extensions this loader claims.
func (JSONLoader) Extensions() []string { return []string{"json"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (JSONLoader) InferByDefault() bool { return true }

// Load parses JSON data into ordered entries.
func (JSONLoader) Load(data []byte) ([]settle.Entry, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, &settle.ParseError{Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &settle.ParseError{Message: "top level must be an object"}
	}

	var entries []settle.Entry
	root.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			sec := []settle.Entry{}
			value.ForEach(func(k, v gjson.Result) bool {
				sec = append(sec, settle.Entry{Key: k.String(), Value: jsonValue(v)})
				return true
			})
			entries = append(entries, settle.Entry{Key: key.String(), Value: sec})
			return true
		}
		entries = append(entries, settle.Entry{Key: key.String(), Value: jsonValue(value)})
		return true
	})
	return entries, nil
}

// jsonValue converts a gjson result into plain Go values.
func jsonValue(res gjson.Result) any {
	switch {
	case res.IsObject():
		out := make(map[string]any)
		res.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = jsonValue(v)
			return true
		})
		return out
	case res.IsArray():
		items := res.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, jsonValue(item))
		}
		return out
	}

	switch res.Type {
	case gjson.String:
		return res.Str
	case gjson.Number:
		if !strings.ContainsAny(res.Raw, ".eE") {
			return res.Int()
		}
		return res.Float()
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}
