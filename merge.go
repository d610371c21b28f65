package settle

import (
	"fmt"

	"github.com/dshills/settle/infer"
)

// cloneValue returns a deep copy of v. Sections, plain maps, and lists
// are copied; scalars are returned as is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case *Section:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []Entry:
		return entryValue(val)
	default:
		return v
	}
}

// plainValue is cloneValue with sections and entry lists flattened to
// map[string]any, for handing data outside the store.
func plainValue(v any) any {
	switch val := v.(type) {
	case *Section:
		return val.Map()
	case []Entry:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = plainValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

// entryValue normalizes a value nested inside a section. Ordered entry
// lists below the section level collapse to plain maps: order is only
// tracked for section names and section keys.
func entryValue(v any) any {
	switch val := v.(type) {
	case []Entry:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = entryValue(e.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = entryValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = entryValue(e)
		}
		return out
	default:
		return v
	}
}

// topEntries normalizes a top-level source into ordered entries. Plain
// maps carry no order, so their keys are sorted; entry lists and stores
// keep their order.
func topEntries(source any) ([]Entry, error) {
	switch src := source.(type) {
	case nil:
		return nil, nil
	case []Entry:
		return src, nil
	case map[string]any:
		out := make([]Entry, 0, len(src))
		for _, k := range sortedKeys(src) {
			out = append(out, Entry{Key: k, Value: src[k]})
		}
		return out, nil
	case map[string]map[string]any:
		out := make([]Entry, 0, len(src))
		for _, k := range sortedKeys(src) {
			out = append(out, Entry{Key: k, Value: src[k]})
		}
		return out, nil
	case *Store:
		if src == nil {
			return nil, nil
		}
		out := make([]Entry, 0, len(src.names))
		for _, name := range src.names {
			out = append(out, Entry{Key: name, Value: src.sections[name]})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrSourceType, source)
	}
}

// fillFrom installs top-level entries into the store. A mapping value
// becomes a named section; a bare scalar or list is bucketed into the
// global section under its own key, preserving order, which is how flat
// sources (dotenv, environment variables) gain a section.
func (s *Store) fillFrom(entries []Entry) error {
	for _, e := range entries {
		switch e.Value.(type) {
		case *Section, map[string]any, map[string]string, []Entry:
			sec, err := sectionFrom(e.Value)
			if err != nil {
				return fmt.Errorf("section %q: %w", e.Key, err)
			}
			if existing, ok := s.sections[e.Key]; ok {
				sec.Range(func(k string, v any) bool {
					existing.Set(k, v)
					return true
				})
			} else {
				s.put(e.Key, sec)
			}
		default:
			global, ok := s.sections[s.globalName]
			if !ok {
				global = NewSection()
				s.put(s.globalName, global)
			}
			global.Set(e.Key, cloneValue(e.Value))
		}
	}
	return nil
}

// mergeDefaults rebases the store on top of default sections. Sections
// only present in the defaults are adopted wholesale and come first in
// iteration order; sections present in both are merged key-by-key with
// the loaded value winning on conflict.
func (s *Store) mergeDefaults(defaults []Entry) error {
	if len(defaults) == 0 {
		return nil
	}
	base := &Store{sections: make(map[string]*Section), globalName: s.globalName}
	if err := base.fillFrom(defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for _, name := range s.names {
		loaded := s.sections[name]
		if existing, ok := base.sections[name]; ok {
			loaded.Range(func(k string, v any) bool {
				existing.Set(k, v)
				return true
			})
		} else {
			base.put(name, loaded)
		}
	}
	s.names = base.names
	s.sections = base.sections
	return nil
}

// applyInference runs scalar inference over every string leaf in the
// store, at any depth.
func (s *Store) applyInference() {
	for _, name := range s.names {
		sec := s.sections[name]
		sec.Range(func(key string, value any) bool {
			sec.Set(key, inferValue(value))
			return true
		})
	}
}

// inferValue infers strings and recurses through containers in place.
func inferValue(v any) any {
	switch val := v.(type) {
	case string:
		return infer.Scalar(val)
	case []any:
		return infer.Any(val)
	case map[string]any:
		for k, e := range val {
			val[k] = inferValue(e)
		}
		return val
	case *Section:
		val.Range(func(k string, e any) bool {
			val.Set(k, inferValue(e))
			return true
		})
		return val
	default:
		return v
	}
}
