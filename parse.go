package settle

import (
	"fmt"

	"github.com/dshills/settle/match"
)

// Descriptor is an immutable, reusable view configuration. The zero
// value matches exactly and returns full sections without accumulating;
// NewDescriptor applies the common defaults instead. Configure with the
// With methods, which return modified copies:
//
//	d := settle.NewDescriptor("source", "interim").
//		WithMode(match.ModeSuffix).
//		WithShape(settle.ShapeContents).
//		WithDivider("_")
//
// Descriptors hold no store reference. Apply projects against whatever
// store they are given, so one descriptor can serve many stores and
// always reflects current contents.
type Descriptor struct {
	terms      []string
	mode       match.Mode
	shape      Shape
	excise     bool
	accumulate bool
	divider    string
}

// NewDescriptor returns a descriptor for terms with the default
// configuration: exact matching, full sections, excision and
// accumulation on, empty divider.
func NewDescriptor(terms ...string) Descriptor {
	return Descriptor{
		terms:      append([]string(nil), terms...),
		mode:       match.ModeExact,
		shape:      ShapeSections,
		excise:     true,
		accumulate: true,
	}
}

// WithMode returns a copy of the descriptor with the matching mode set.
func (d Descriptor) WithMode(m match.Mode) Descriptor {
	d.mode = m
	return d
}

// WithShape returns a copy of the descriptor with the output shape set.
func (d Descriptor) WithShape(sh Shape) Descriptor {
	d.shape = sh
	return d
}

// WithExcise returns a copy of the descriptor with excision toggled.
func (d Descriptor) WithExcise(excise bool) Descriptor {
	d.excise = excise
	return d
}

// WithAccumulate returns a copy of the descriptor with accumulation
// toggled.
func (d Descriptor) WithAccumulate(accumulate bool) Descriptor {
	d.accumulate = accumulate
	return d
}

// WithDivider returns a copy of the descriptor with the divider set.
func (d Descriptor) WithDivider(divider string) Descriptor {
	d.divider = divider
	return d
}

// View returns the descriptor's configuration as a View. The terms
// slice is a copy; callers cannot mutate the descriptor through it.
func (d Descriptor) View() View {
	return View{
		Terms:      append([]string(nil), d.terms...),
		Mode:       d.mode,
		Shape:      d.shape,
		Excise:     d.excise,
		Accumulate: d.accumulate,
		Divider:    d.divider,
	}
}

// Apply projects the descriptor's view over the store. Nothing is
// cached; each call recomputes from current contents.
func (d Descriptor) Apply(s *Store) (any, error) {
	return s.Project(d.View())
}

// Assign writes value as a whole section under the name the descriptor
// resolves to: the first existing section matching the terms, or the
// first term when none match. The section is replaced, not merged.
func (d Descriptor) Assign(s *Store, value any) error {
	name, ok := d.resolve(s)
	if !ok {
		if len(d.terms) == 0 {
			return fmt.Errorf("%w: descriptor has no terms to name a section", ErrNoTerms)
		}
		name = d.terms[0]
	}
	return s.Put(name, value)
}

// resolve finds the first store section matching the descriptor's
// terms. Excision is irrelevant here; only the original name matters.
func (d Descriptor) resolve(s *Store) (string, bool) {
	m := match.New(d.terms, d.mode, d.divider)
	for _, name := range s.names {
		if _, ok := m.Match(name, false); ok {
			return name, true
		}
	}
	return "", false
}

// Bind registers a descriptor under name. Later bindings under the same
// name replace earlier ones.
func (s *Store) Bind(name string, d Descriptor) {
	if s.bindings == nil {
		s.bindings = make(map[string]Descriptor)
	}
	s.bindings[name] = d
}

// Bindings returns the bound view names in sorted order.
func (s *Store) Bindings() []string {
	return sortedKeys(s.bindings)
}

// View projects the view bound under name.
func (s *Store) View(name string) (any, error) {
	d, ok := s.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: no view bound as %q", ErrKeyNotFound, name)
	}
	return s.Project(d.View())
}

// SetView assigns value through the view bound under name.
func (s *Store) SetView(name string, value any) error {
	d, ok := s.bindings[name]
	if !ok {
		return fmt.Errorf("%w: no view bound as %q", ErrKeyNotFound, name)
	}
	return d.Assign(s, value)
}
