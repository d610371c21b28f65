package settle

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func accessorStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(map[string]map[string]any{
		"general": {
			"verbose":   true,
			"seed":      43,
			"ratio":     4.3,
			"name":      "project",
			"tasks":     []any{"stop", "drop", "roll"},
			"wide":      int64(1 << 40),
			"timeout":   "500ms",
			"poll":      250,
			"hierarchy": map[string]any{"leaf": map[string]any{"depth": 2}},
		},
	}, WithInference(false))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return st
}

func TestLookup(t *testing.T) {
	st := accessorStore(t)

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"general.seed", 43, true},
		{"general.hierarchy.leaf.depth", 2, true},
		{"general.missing", nil, false},
		{"missing.key", nil, false},
		{"general.seed.deeper", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := st.Lookup(tt.path)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			continue
		}
		if ok && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lookup(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	// A bare section name yields a detached plain map.
	got, ok := st.Lookup("general")
	if !ok {
		t.Fatal("Lookup(general) ok = false")
	}
	m := got.(map[string]any)
	m["seed"] = 0
	if v, _ := st.Lookup("general.seed"); v != 43 {
		t.Errorf("seed = %v after Lookup mutation, want 43", v)
	}
}

func TestValue(t *testing.T) {
	st := accessorStore(t)
	if _, err := st.Value("general.seed"); err != nil {
		t.Errorf("Value(general.seed) error = %v", err)
	}
	if _, err := st.Value("general.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("Value(missing) error = %v, want ErrSettingNotFound", err)
	}
}

func TestTypedGetters(t *testing.T) {
	st := accessorStore(t)

	if v, err := st.GetString("general.name"); err != nil || v != "project" {
		t.Errorf("GetString() = %q, %v", v, err)
	}
	if v, err := st.GetInt("general.seed"); err != nil || v != 43 {
		t.Errorf("GetInt() = %d, %v", v, err)
	}
	if v, err := st.GetInt64("general.wide"); err != nil || v != 1<<40 {
		t.Errorf("GetInt64() = %d, %v", v, err)
	}
	if v, err := st.GetFloat64("general.ratio"); err != nil || v != 4.3 {
		t.Errorf("GetFloat64() = %v, %v", v, err)
	}
	if v, err := st.GetFloat64("general.seed"); err != nil || v != 43.0 {
		t.Errorf("GetFloat64(int) = %v, %v", v, err)
	}
	if v, err := st.GetBool("general.verbose"); err != nil || !v {
		t.Errorf("GetBool() = %v, %v", v, err)
	}
	if v, err := st.GetStringSlice("general.tasks"); err != nil || !reflect.DeepEqual(v, []string{"stop", "drop", "roll"}) {
		t.Errorf("GetStringSlice() = %v, %v", v, err)
	}
	if v, err := st.GetDuration("general.timeout"); err != nil || v != 500*time.Millisecond {
		t.Errorf("GetDuration(string) = %v, %v", v, err)
	}
	if v, err := st.GetDuration("general.poll"); err != nil || v != 250*time.Millisecond {
		t.Errorf("GetDuration(int) = %v, %v", v, err)
	}
	if v, err := st.GetMap("general.hierarchy"); err != nil || v["leaf"] == nil {
		t.Errorf("GetMap() = %v, %v", v, err)
	}
}

func TestTypedGetterMismatch(t *testing.T) {
	st := accessorStore(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"string from int", func() error { _, err := st.GetString("general.seed"); return err }},
		{"int from string", func() error { _, err := st.GetInt("general.name"); return err }},
		{"bool from int", func() error { _, err := st.GetBool("general.seed"); return err }},
		{"float from string", func() error { _, err := st.GetFloat64("general.name"); return err }},
		{"slice from scalar", func() error { _, err := st.GetStringSlice("general.seed"); return err }},
		{"map from scalar", func() error { _, err := st.GetMap("general.seed"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("error = %v, want ErrTypeMismatch", err)
			}
			var te *TypeError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TypeError", err)
			}
			if te.Path == "" || te.Expected == "" || te.Actual == "" {
				t.Errorf("TypeError fields incomplete: %+v", te)
			}
		})
	}
}

func TestTypedGetterMissingPath(t *testing.T) {
	st := accessorStore(t)
	if _, err := st.GetInt("general.absent"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetInt(absent) error = %v, want ErrSettingNotFound", err)
	}
}

func TestGetStringSliceMixedElements(t *testing.T) {
	st, err := New(map[string]map[string]any{
		"general": {"mixed": []any{"a", 2}},
	}, WithInference(false))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := st.GetStringSlice("general.mixed"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetStringSlice(mixed) error = %v, want ErrTypeMismatch", err)
	}
}
