package settle

import (
	"fmt"
	"strings"

	"github.com/dshills/settle/match"
)

// Shape selects the output form of a projection. The first five work on
// section names (outer scope); ShapeContents, ShapeSectionKeys, and
// ShapeSectionKinds work on the keys inside each section (inner scope).
type Shape uint8

const (
	// ShapeSections maps each matching section name (possibly excised)
	// to a copy of the full section.
	ShapeSections Shape = iota
	// ShapeSectionContents merges the contents of every matching
	// section into one mapping, later matches winning on key collision.
	ShapeSectionContents
	// ShapeContents maps each section name to the subset of its keys
	// (possibly excised) that match; sections with no matching key are
	// omitted.
	ShapeContents
	// ShapeKeys lists matching section names (possibly excised) in
	// store order.
	ShapeKeys
	// ShapeKinds maps each matching section name (possibly excised) to
	// the term it matched.
	ShapeKinds
	// ShapeSectionKeys lists the matching keys (possibly excised) per
	// section; sections with no matching key are omitted.
	ShapeSectionKeys
	// ShapeSectionKinds maps matching keys (possibly excised) to their
	// matched terms per section; sections with no matching key are
	// omitted.
	ShapeSectionKinds
)

// String returns the shape name.
func (sh Shape) String() string {
	switch sh {
	case ShapeSections:
		return "sections"
	case ShapeSectionContents:
		return "section_contents"
	case ShapeContents:
		return "contents"
	case ShapeKeys:
		return "keys"
	case ShapeKinds:
		return "kinds"
	case ShapeSectionKeys:
		return "section_keys"
	case ShapeSectionKinds:
		return "section_kinds"
	default:
		return fmt.Sprintf("shape(%d)", sh)
	}
}

// ParseShape converts a shape name into a Shape.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(name) {
	case "sections":
		return ShapeSections, nil
	case "section_contents":
		return ShapeSectionContents, nil
	case "contents":
		return ShapeContents, nil
	case "keys":
		return ShapeKeys, nil
	case "kinds":
		return ShapeKinds, nil
	case "section_keys":
		return ShapeSectionKeys, nil
	case "section_kinds":
		return ShapeSectionKinds, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

// View bundles the configuration of one projection: which terms to
// match, how (Mode, Divider), what to return (Shape), whether matched
// terms are stripped from output keys (Excise), and whether all matches
// or only the first are returned (Accumulate).
type View struct {
	Terms      []string
	Mode       match.Mode
	Shape      Shape
	Excise     bool
	Accumulate bool
	Divider    string
}

// Project computes the view over the store's current contents. Results
// are fresh copies; mutating them never touches the store.
//
// With Accumulate set, the full structure for the shape is returned, and
// zero matches yield an empty collection of the shape's natural type.
// Without it, only the first matching entry in store order is returned
// (for mapping shapes the value under the first key, for list shapes the
// first element), and zero matches are an error: ErrSectionNotFound for
// outer-scope shapes, ErrKeyNotFound for inner-scope ones. Callers that
// expect absence should project with Accumulate first.
func (s *Store) Project(v View) (any, error) {
	if len(v.Terms) == 0 {
		return nil, ErrNoTerms
	}
	if v.Mode > match.ModeSuffix {
		return nil, fmt.Errorf("%w: %d", match.ErrUnknownMode, v.Mode)
	}
	m := match.New(v.Terms, v.Mode, v.Divider)

	switch v.Shape {
	case ShapeSections:
		res, order := s.sectionsView(m, v.Excise)
		return finishMap(res, order, v.Accumulate, noSectionMatch(v.Terms))
	case ShapeSectionContents:
		merged := s.sectionContentsView(m)
		if v.Accumulate {
			return merged.Map(), nil
		}
		if merged.Len() == 0 {
			return nil, noSectionMatch(v.Terms)
		}
		first, _ := merged.Get(merged.keys[0])
		return first, nil
	case ShapeContents:
		res, order := s.contentsView(m, v.Excise)
		return finishMap(res, order, v.Accumulate, noKeyMatch(v.Terms))
	case ShapeKeys:
		return finishList(s.keysView(m, v.Excise), v.Accumulate, noSectionMatch(v.Terms))
	case ShapeKinds:
		res, order := s.kindsView(m, v.Excise)
		return finishMap(res, order, v.Accumulate, noSectionMatch(v.Terms))
	case ShapeSectionKeys:
		res, order := s.sectionKeysView(m, v.Excise)
		return finishMap(res, order, v.Accumulate, noKeyMatch(v.Terms))
	case ShapeSectionKinds:
		res, order := s.sectionKindsView(m, v.Excise)
		return finishMap(res, order, v.Accumulate, noKeyMatch(v.Terms))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, v.Shape)
	}
}

func noSectionMatch(terms []string) error {
	return fmt.Errorf("%w: no section matches terms %v", ErrSectionNotFound, terms)
}

func noKeyMatch(terms []string) error {
	return fmt.Errorf("%w: no key matches terms %v", ErrKeyNotFound, terms)
}

// finishMap applies the accumulate rule to a mapping-shaped result,
// using order to find the first match in store order.
func finishMap[V any](res map[string]V, order []string, accumulate bool, miss error) (any, error) {
	if accumulate {
		return res, nil
	}
	if len(order) == 0 {
		return nil, miss
	}
	return res[order[0]], nil
}

// finishList applies the accumulate rule to a list-shaped result.
func finishList(res []string, accumulate bool, miss error) (any, error) {
	if accumulate {
		return res, nil
	}
	if len(res) == 0 {
		return nil, miss
	}
	return res[0], nil
}

// sectionsView collects matching sections under their (possibly excised)
// names. When two names excise to the same residual, the later section
// wins but keeps the earlier position, mirroring ordered-map update
// semantics.
func (s *Store) sectionsView(m match.Matcher, excise bool) (map[string]map[string]any, []string) {
	res := make(map[string]map[string]any)
	var order []string
	for _, name := range s.names {
		r, ok := m.Match(name, excise)
		if !ok {
			continue
		}
		if _, dup := res[r.Residual]; !dup {
			order = append(order, r.Residual)
		}
		res[r.Residual] = s.sections[name].Map()
	}
	return res, order
}

// sectionContentsView merges the contents of every matching section in
// store order. The result is built as a Section so the first merged key
// is known when accumulate is off.
func (s *Store) sectionContentsView(m match.Matcher) *Section {
	merged := NewSection()
	for _, name := range s.names {
		if _, ok := m.Match(name, false); !ok {
			continue
		}
		s.sections[name].Range(func(k string, v any) bool {
			merged.Set(k, plainValue(v))
			return true
		})
	}
	return merged
}

// contentsView restricts each section to its matching keys.
func (s *Store) contentsView(m match.Matcher, excise bool) (map[string]map[string]any, []string) {
	res := make(map[string]map[string]any)
	var order []string
	for _, name := range s.names {
		var sub map[string]any
		s.sections[name].Range(func(k string, v any) bool {
			if r, ok := m.Match(k, excise); ok {
				if sub == nil {
					sub = make(map[string]any)
				}
				sub[r.Residual] = plainValue(v)
			}
			return true
		})
		if sub != nil {
			order = append(order, name)
			res[name] = sub
		}
	}
	return res, order
}

// keysView lists matching section names in store order. Duplicates can
// appear when different names excise to the same residual.
func (s *Store) keysView(m match.Matcher, excise bool) []string {
	out := make([]string, 0, len(s.names))
	for _, name := range s.names {
		if r, ok := m.Match(name, excise); ok {
			out = append(out, r.Residual)
		}
	}
	return out
}

// kindsView maps matching section names to the terms they matched.
func (s *Store) kindsView(m match.Matcher, excise bool) (map[string]string, []string) {
	res := make(map[string]string)
	var order []string
	for _, name := range s.names {
		r, ok := m.Match(name, excise)
		if !ok {
			continue
		}
		if _, dup := res[r.Residual]; !dup {
			order = append(order, r.Residual)
		}
		res[r.Residual] = r.Term
	}
	return res, order
}

// sectionKeysView lists matching keys per section.
func (s *Store) sectionKeysView(m match.Matcher, excise bool) (map[string][]string, []string) {
	res := make(map[string][]string)
	var order []string
	for _, name := range s.names {
		var keys []string
		s.sections[name].Range(func(k string, _ any) bool {
			if r, ok := m.Match(k, excise); ok {
				keys = append(keys, r.Residual)
			}
			return true
		})
		if len(keys) > 0 {
			order = append(order, name)
			res[name] = keys
		}
	}
	return res, order
}

// sectionKindsView maps matching keys to their matched terms per
// section.
func (s *Store) sectionKindsView(m match.Matcher, excise bool) (map[string]map[string]string, []string) {
	res := make(map[string]map[string]string)
	var order []string
	for _, name := range s.names {
		var kinds map[string]string
		s.sections[name].Range(func(k string, _ any) bool {
			if r, ok := m.Match(k, excise); ok {
				if kinds == nil {
					kinds = make(map[string]string)
				}
				kinds[r.Residual] = r.Term
			}
			return true
		})
		if kinds != nil {
			order = append(order, name)
			res[name] = kinds
		}
	}
	return res, order
}
