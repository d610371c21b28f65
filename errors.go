package settle

import (
	"errors"
	"fmt"
)

// Sentinel errors for store construction and operations. Wrap these with
// fmt.Errorf and %w so callers can test with errors.Is.
var (
	// ErrSourceType indicates a source that is neither a mapping, an
	// ordered entry list, a store, nor a recognized file path.
	ErrSourceType = errors.New("unsupported source type")

	// ErrSourceNotFound indicates a source path that does not exist.
	ErrSourceNotFound = errors.New("settings source not found")

	// ErrSectionNotFound indicates a missing top-level section.
	ErrSectionNotFound = errors.New("section not found")

	// ErrKeyNotFound indicates a missing key or view binding.
	ErrKeyNotFound = errors.New("key not found")

	// ErrSectionValue indicates section contents that cannot be merged
	// as a mapping.
	ErrSectionValue = errors.New("section contents must be a mapping")

	// ErrSubsetRequest indicates a Subset call with neither include nor
	// exclude names.
	ErrSubsetRequest = errors.New("subset requires include or exclude names")

	// ErrNoTerms indicates a view with no terms to match.
	ErrNoTerms = errors.New("at least one term is required")

	// ErrUnknownShape indicates a Shape outside the supported range.
	ErrUnknownShape = errors.New("unknown view shape")

	// ErrSettingNotFound indicates a dotted path that resolves to
	// nothing.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates a value of the wrong type for a typed
	// accessor.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInjectTarget indicates an inject target that is not a non-nil
	// struct pointer.
	ErrInjectTarget = errors.New("inject target must be a non-nil struct pointer")
)

// ParseError represents an error while parsing a settings source.
// Loaders fill in what their format library reports; Create adds the
// path when it reads the source from a file.
type ParseError struct {
	// Path is the source path that failed to parse (if known).
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "source"
	}
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", src, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", src, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", src, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// TypeError provides details about a typed accessor that found a value of
// the wrong type.
type TypeError struct {
	Path     string // dotted path that was read
	Expected string // expected type name
	Actual   string // actual type name
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type mismatch at %q: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is reports whether target is ErrTypeMismatch, so errors.Is works with
// the sentinel.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// typeName returns a human-readable type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case int, int32, int64:
		return "integer"
	case float32, float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
