// Package match tests section names and keys against ordered candidate
// terms.
//
// A Matcher holds the terms, a Mode deciding how much of an item a term
// must cover, and the divider expected between a term and the remainder of
// the item. Matching is first-term-wins: terms are tried in declaration
// order and the first hit is returned, so callers that want longest-match
// behavior should order their terms longest first.
package match

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for unrecognized mode names.
var ErrUnknownMode = errors.New("unknown match mode")

// Mode selects how much of an item a term must cover to match.
type Mode uint8

const (
	// ModeExact matches when the item equals a term verbatim.
	ModeExact Mode = iota
	// ModePrefix matches when the item starts with term+divider.
	ModePrefix
	// ModeSuffix matches when the item ends with divider+term.
	ModeSuffix
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePrefix:
		return "prefix"
	case ModeSuffix:
		return "suffix"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "exact":
		return ModeExact, nil
	case "prefix":
		return ModePrefix, nil
	case "suffix":
		return ModeSuffix, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Result reports a successful match.
type Result struct {
	// Residual is the item after excision, or the item unchanged when
	// excision was not requested.
	Residual string
	// Term is the term that matched.
	Term string
}

// Matcher tests items against an ordered set of terms.
type Matcher struct {
	Terms   []string
	Mode    Mode
	Divider string
}

// New returns a Matcher for the given terms.
func New(terms []string, mode Mode, divider string) Matcher {
	return Matcher{Terms: terms, Mode: mode, Divider: divider}
}

// Match tests item against the matcher's terms in declaration order and
// reports the first hit. A no-match across all terms returns ok == false,
// never an error. Under ModeExact the residual is always the item itself:
// excising an exact match would leave the empty string, so the excise flag
// has no effect there. An out-of-range Mode matches nothing.
func (m Matcher) Match(item string, excise bool) (Result, bool) {
	for _, term := range m.Terms {
		switch m.Mode {
		case ModeExact:
			if item == term {
				return Result{Residual: item, Term: term}, true
			}
		case ModePrefix:
			candidate := term + m.Divider
			if strings.HasPrefix(item, candidate) {
				residual := item
				if excise {
					residual = strings.TrimPrefix(item, candidate)
				}
				return Result{Residual: residual, Term: term}, true
			}
		case ModeSuffix:
			candidate := m.Divider + term
			if strings.HasSuffix(item, candidate) {
				residual := item
				if excise {
					residual = strings.TrimSuffix(item, candidate)
				}
				return Result{Residual: residual, Term: term}, true
			}
		}
	}
	return Result{}, false
}
