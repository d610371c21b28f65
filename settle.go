// Package settle stores project settings as an insertion-ordered,
// two-level mapping: named sections, each holding ordered key/value pairs.
//
// Stores are built from in-memory data or, through the loader registry,
// from TOML, YAML, JSON, INI, dotenv, XML, or Lua sources (import the
// loader subpackage to register the file formats). Construction merges
// defaults underneath the loaded contents and can pass string leaves
// through scalar type inference for formats that carry no types of their
// own.
//
// On top of the store, views project filtered and renamed slices of the
// data: sections whose names carry a suffix, keys sharing a prefix family,
// and so on. Views are described by a Descriptor, computed on demand, and
// never cached, so they cannot go stale.
//
// A Store is a plain value container. Operations return synchronously and
// take no internal locks; callers that share one store across goroutines
// must synchronize access themselves.
package settle

import (
	"fmt"
	"sort"
)

// DeletePolicy governs how Delete treats a missing section.
type DeletePolicy uint8

const (
	// DeleteStrict makes Delete return ErrSectionNotFound for a missing
	// section.
	DeleteStrict DeletePolicy = iota
	// DeleteLenient makes Delete ignore missing sections.
	DeleteLenient
)

// String returns the policy name.
func (p DeletePolicy) String() string {
	switch p {
	case DeleteStrict:
		return "strict"
	case DeleteLenient:
		return "lenient"
	default:
		return fmt.Sprintf("policy(%d)", p)
	}
}

// Section is an insertion-ordered mapping from key to value. Values are
// scalars, []any lists, or nested mappings carried opaquely.
type Section struct {
	keys   []string
	values map[string]any
}

// NewSection returns an empty section.
func NewSection() *Section {
	return &Section{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key. A new key is appended to the iteration
// order; an existing key keeps its original position.
func (s *Section) Set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Delete removes key and reports whether it was present.
func (s *Section) Delete(key string) bool {
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether key is present.
func (s *Section) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Values returns the values in insertion order.
func (s *Section) Values() []any {
	out := make([]any, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.values[k])
	}
	return out
}

// Len returns the number of keys.
func (s *Section) Len() int {
	return len(s.keys)
}

// Range calls fn for each key/value pair in insertion order until fn
// returns false.
func (s *Section) Range(fn func(key string, value any) bool) {
	for _, k := range append([]string(nil), s.keys...) {
		if v, ok := s.values[k]; ok {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Map returns a deep plain-map copy of the section. Nested sections
// become map[string]any, so the result is safe to hand to encoders and
// callers that mutate it.
func (s *Section) Map() map[string]any {
	out := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		out[k] = plainValue(s.values[k])
	}
	return out
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	out := &Section{
		keys:   append([]string(nil), s.keys...),
		values: make(map[string]any, len(s.values)),
	}
	for k, v := range s.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// Store is an insertion-ordered collection of named sections.
type Store struct {
	names    []string
	sections map[string]*Section

	infer      bool
	policy     DeletePolicy
	globalName string
	bindings   map[string]Descriptor
}

// Get returns the named section.
func (s *Store) Get(name string) (*Section, bool) {
	sec, ok := s.sections[name]
	return sec, ok
}

// Has reports whether the named section exists.
func (s *Store) Has(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Names returns the section names in insertion order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Sections returns the sections in insertion order, aligned with Names.
func (s *Store) Sections() []*Section {
	out := make([]*Section, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.sections[name])
	}
	return out
}

// Len returns the number of sections.
func (s *Store) Len() int {
	return len(s.names)
}

// Range calls fn for each section in insertion order until fn returns
// false.
func (s *Store) Range(fn func(name string, sec *Section) bool) {
	for _, name := range append([]string(nil), s.names...) {
		if sec, ok := s.sections[name]; ok {
			if !fn(name, sec) {
				return
			}
		}
	}
}

// Map returns a deep plain-map copy of the whole store.
func (s *Store) Map() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.names))
	for _, name := range s.names {
		out[name] = s.sections[name].Map()
	}
	return out
}

// Put replaces or creates the named section wholesale. Unlike Add it
// never merges: whatever was stored under name before is discarded.
func (s *Store) Put(name string, contents any) error {
	sec, err := sectionFrom(contents)
	if err != nil {
		return fmt.Errorf("section %q: %w", name, err)
	}
	s.put(name, sec)
	return nil
}

// put installs sec under name, preserving an existing position.
func (s *Store) put(name string, sec *Section) {
	if _, ok := s.sections[name]; !ok {
		s.names = append(s.names, name)
	}
	s.sections[name] = sec
}

// Add merges contents into the named section, or inserts a fresh section
// when the name is new. Within the call, incoming keys win on collision.
// Contents must be a *Section, map[string]any, map[string]string, or
// []Entry; anything else fails with ErrSectionValue.
func (s *Store) Add(name string, contents any) error {
	incoming, err := sectionFrom(contents)
	if err != nil {
		return fmt.Errorf("section %q: %w", name, err)
	}
	existing, ok := s.sections[name]
	if !ok {
		s.put(name, incoming)
		return nil
	}
	incoming.Range(func(key string, value any) bool {
		existing.Set(key, value)
		return true
	})
	return nil
}

// Delete removes the named section. A missing name fails with
// ErrSectionNotFound under DeleteStrict (the default policy) and is
// ignored under DeleteLenient.
func (s *Store) Delete(name string) error {
	if _, ok := s.sections[name]; !ok {
		if s.policy == DeleteLenient {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	delete(s.sections, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return nil
}

// Subset returns a new store holding only the include sections (all
// sections when include is nil) minus the exclude sections. Passing nil
// for both is rejected with ErrSubsetRequest: a subset that selects
// everything is treated as a caller mistake, not a copy request. The
// result preserves the store's construction settings and bindings; when
// include is given, its order becomes the result's section order, and an
// unknown include name fails with ErrSectionNotFound.
func (s *Store) Subset(include, exclude []string) (*Store, error) {
	if include == nil && exclude == nil {
		return nil, ErrSubsetRequest
	}
	names := include
	if names == nil {
		names = s.names
	}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	out := s.emptyCopy()
	for _, name := range names {
		if excluded[name] {
			continue
		}
		sec, ok := s.sections[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
		}
		out.put(name, sec.Clone())
	}
	return out, nil
}

// emptyCopy returns a store with no sections but the same construction
// settings and bindings as s.
func (s *Store) emptyCopy() *Store {
	out := &Store{
		sections:   make(map[string]*Section),
		infer:      s.infer,
		policy:     s.policy,
		globalName: s.globalName,
	}
	if len(s.bindings) > 0 {
		out.bindings = make(map[string]Descriptor, len(s.bindings))
		for name, d := range s.bindings {
			out.bindings[name] = d
		}
	}
	return out
}

// sectionFrom converts supported mapping forms into a fresh Section.
// Plain maps carry no order, so their keys are sorted for determinism;
// []Entry preserves the given order.
func sectionFrom(contents any) (*Section, error) {
	switch src := contents.(type) {
	case *Section:
		if src == nil {
			return NewSection(), nil
		}
		return src.Clone(), nil
	case map[string]any:
		sec := NewSection()
		for _, k := range sortedKeys(src) {
			sec.Set(k, cloneValue(src[k]))
		}
		return sec, nil
	case map[string]string:
		sec := NewSection()
		for _, k := range sortedKeys(src) {
			sec.Set(k, src[k])
		}
		return sec, nil
	case []Entry:
		sec := NewSection()
		for _, e := range src {
			sec.Set(e.Key, entryValue(e.Value))
		}
		return sec, nil
	default:
		return nil, fmt.Errorf("%w: got %s", ErrSectionValue, typeName(contents))
	}
}

// sortedKeys returns the keys of m in lexicographic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
