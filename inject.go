package settle

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Named is implemented by targets that know which section configures
// them. Inject reads that section before any extras.
type Named interface {
	Name() string
}

// Inject copies settings into the exported fields of the struct target
// points to. The sections consulted are the target's own (when it
// implements Named) followed by extras, in that order; names without a
// matching section are skipped. Within a section, each key is resolved
// to a field by `settle` tag, exact name, or the exported form of a
// snake_case key (conserve_memory matches ConserveMemory). A field is
// only written when it holds its zero value, unless overwrite is set.
// Values that cannot be assigned to the resolved field yield a
// *TypeError.
func (s *Store) Inject(target any, extras []string, overwrite bool) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: need a non-nil struct pointer, got %T", ErrInjectTarget, target)
	}
	elem := rv.Elem()

	var names []string
	if n, ok := target.(Named); ok {
		names = append(names, n.Name())
	}
	names = append(names, extras...)

	for _, name := range names {
		sec, ok := s.Get(name)
		if !ok {
			continue
		}
		var err error
		sec.Range(func(key string, value any) bool {
			field, ok := findField(elem, key)
			if !ok || !field.CanSet() {
				return true
			}
			if !field.IsZero() && !overwrite {
				return true
			}
			err = assignValue(field, name+"."+key, value)
			return err == nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// findField resolves a settings key to a struct field: `settle` tag
// first, then the key itself, then its exported snake_case form.
func findField(elem reflect.Value, key string) (reflect.Value, bool) {
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("settle") == key {
			return elem.Field(i), true
		}
	}
	if f := elem.FieldByName(key); f.IsValid() {
		return f, true
	}
	if f := elem.FieldByName(exportedName(key)); f.IsValid() {
		return f, true
	}
	return reflect.Value{}, false
}

// exportedName converts a snake_case key to an exported Go identifier.
func exportedName(key string) string {
	var b strings.Builder
	for _, part := range strings.Split(key, "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// assignValue sets field to value, coercing across the numeric kinds a
// store can hold and rebuilding []string from a list of strings.
func assignValue(field reflect.Value, path string, value any) error {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := value.(type) {
		case int:
			field.SetInt(int64(v))
			return nil
		case int64:
			field.SetInt(v)
			return nil
		case float64:
			field.SetInt(int64(v))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
			return nil
		case int:
			field.SetFloat(float64(v))
			return nil
		case int64:
			field.SetFloat(float64(v))
			return nil
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			if items, ok := value.([]any); ok {
				out := make([]string, 0, len(items))
				for _, item := range items {
					str, ok := item.(string)
					if !ok {
						out = nil
						break
					}
					out = append(out, str)
				}
				if out != nil {
					field.Set(reflect.ValueOf(out))
					return nil
				}
			}
		}
	}

	return &TypeError{
		Path:     path,
		Expected: field.Type().String(),
		Actual:   typeName(value),
	}
}
