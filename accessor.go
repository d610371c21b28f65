package settle

import (
	"fmt"
	"strings"
	"time"
)

// Lookup resolves a dot-separated path against the store and returns a
// detached copy of the value there. The first path element names a
// section; further elements walk section keys and nested mappings.
// Returns nil, false when the path does not resolve.
func (s *Store) Lookup(path string) (any, bool) {
	parts := strings.Split(path, ".")
	sec, ok := s.sections[parts[0]]
	if !ok {
		return nil, false
	}

	var current any = sec
	for _, part := range parts[1:] {
		switch node := current.(type) {
		case *Section:
			v, ok := node.Get(part)
			if !ok {
				return nil, false
			}
			current = v
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}

	return plainValue(current), true
}

// Value returns the value at the given dot-separated path.
// Returns ErrSettingNotFound if the path does not resolve.
func (s *Store) Value(path string) (any, error) {
	if v, ok := s.Lookup(path); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
}

// GetString returns a string value at the given path.
func (s *Store) GetString(path string) (string, error) {
	val, err := s.Value(path)
	if err != nil {
		return "", err
	}

	if val == nil {
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", &TypeError{
			Path:     path,
			Expected: "string",
			Actual:   typeName(val),
		}
	}

	return str, nil
}

// GetInt returns an integer value at the given path.
func (s *Store) GetInt(path string) (int, error) {
	val, err := s.Value(path)
	if err != nil {
		return 0, err
	}

	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, &TypeError{
			Path:     path,
			Expected: "integer",
			Actual:   typeName(val),
		}
	}
}

// GetInt64 returns an int64 value at the given path.
func (s *Store) GetInt64(path string) (int64, error) {
	val, err := s.Value(path)
	if err != nil {
		return 0, err
	}

	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, &TypeError{
			Path:     path,
			Expected: "integer",
			Actual:   typeName(val),
		}
	}
}

// GetFloat64 returns a float64 value at the given path.
func (s *Store) GetFloat64(path string) (float64, error) {
	val, err := s.Value(path)
	if err != nil {
		return 0, err
	}

	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, &TypeError{
			Path:     path,
			Expected: "float",
			Actual:   typeName(val),
		}
	}
}

// GetBool returns a boolean value at the given path.
func (s *Store) GetBool(path string) (bool, error) {
	val, err := s.Value(path)
	if err != nil {
		return false, err
	}

	if val == nil {
		return false, nil
	}

	b, ok := val.(bool)
	if !ok {
		return false, &TypeError{
			Path:     path,
			Expected: "boolean",
			Actual:   typeName(val),
		}
	}

	return b, nil
}

// GetStringSlice returns a string slice value at the given path.
func (s *Store) GetStringSlice(path string) ([]string, error) {
	val, err := s.Value(path)
	if err != nil {
		return nil, err
	}

	if val == nil {
		return nil, nil
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, &TypeError{
					Path:     path,
					Expected: "string list",
					Actual:   fmt.Sprintf("list with %s element", typeName(item)),
				}
			}
			result[i] = str
		}
		return result, nil
	default:
		return nil, &TypeError{
			Path:     path,
			Expected: "string list",
			Actual:   typeName(val),
		}
	}
}

// GetDuration returns a time.Duration value at the given path.
// Accepts both duration strings (e.g., "500ms") and integers
// (milliseconds).
func (s *Store) GetDuration(path string) (time.Duration, error) {
	val, err := s.Value(path)
	if err != nil {
		return 0, err
	}

	if val == nil {
		return 0, nil
	}

	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string at %s: %w", path, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v) * time.Millisecond, nil
	default:
		return 0, &TypeError{
			Path:     path,
			Expected: "duration",
			Actual:   typeName(val),
		}
	}
}

// GetMap returns a mapping value at the given path.
func (s *Store) GetMap(path string) (map[string]any, error) {
	val, err := s.Value(path)
	if err != nil {
		return nil, err
	}

	if val == nil {
		return nil, nil
	}

	m, ok := val.(map[string]any)
	if !ok {
		return nil, &TypeError{
			Path:     path,
			Expected: "mapping",
			Actual:   typeName(val),
		}
	}

	return m, nil
}
