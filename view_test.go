package settle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/settle/match"
)

func TestShapeString(t *testing.T) {
	tests := []struct {
		shape Shape
		want  string
	}{
		{ShapeSections, "sections"},
		{ShapeSectionContents, "section_contents"},
		{ShapeContents, "contents"},
		{ShapeKeys, "keys"},
		{ShapeKinds, "kinds"},
		{ShapeSectionKeys, "section_keys"},
		{ShapeSectionKinds, "section_kinds"},
		{Shape(9), "shape(9)"},
	}
	for _, tt := range tests {
		if got := tt.shape.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseShape(t *testing.T) {
	for _, sh := range []Shape{
		ShapeSections, ShapeSectionContents, ShapeContents,
		ShapeKeys, ShapeKinds, ShapeSectionKeys, ShapeSectionKinds,
	} {
		got, err := ParseShape(sh.String())
		if err != nil {
			t.Fatalf("ParseShape(%q) error = %v", sh.String(), err)
		}
		if got != sh {
			t.Errorf("ParseShape(%q) = %v, want %v", sh.String(), got, sh)
		}
	}
	if _, err := ParseShape("triangle"); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("ParseShape(triangle) error = %v, want ErrUnknownShape", err)
	}
}

func TestProject(t *testing.T) {
	st := projectStore(t)

	tests := []struct {
		name string
		view View
		want any
	}{
		{
			name: "parameters sidecar sections",
			view: View{
				Terms: []string{"parameters"}, Mode: match.ModeSuffix,
				Shape: ShapeSections, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string]map[string]any{
				"tasks": {"start": "when_ready", "end": "when_done"},
			},
		},
		{
			name: "format settings per section",
			view: View{
				Terms: []string{"format"}, Mode: match.ModeSuffix,
				Shape: ShapeContents, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string]map[string]any{
				"files": {
					"source":   "csv",
					"interim":  "csv",
					"final":    "csv",
					"analysis": "csv",
					"float":    "%.4f",
				},
			},
		},
		{
			name: "suffix families as kinds",
			view: View{
				Terms: []string{"format", "chunk", "out", "memory"}, Mode: match.ModeSuffix,
				Shape: ShapeSectionKinds, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string]map[string]string{
				"general": {"conserve": "memory"},
				"files": {
					"source":      "format",
					"interim":     "format",
					"final":       "format",
					"analysis":    "format",
					"float":       "format",
					"test":        "chunk",
					"random_test": "chunk",
					"boolean":     "out",
				},
			},
		},
		{
			name: "format keys per section",
			view: View{
				Terms: []string{"format"}, Mode: match.ModeSuffix,
				Shape: ShapeSectionKeys, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string][]string{
				"files": {"source", "interim", "final", "analysis", "float"},
			},
		},
		{
			name: "exact section names as keys",
			view: View{
				Terms: []string{"general", "files"}, Mode: match.ModeExact,
				Shape: ShapeKeys, Excise: true, Accumulate: true,
			},
			want: []string{"general", "files"},
		},
		{
			name: "prefix keys without excision",
			view: View{
				Terms: []string{"test", "final"}, Mode: match.ModePrefix,
				Shape: ShapeSectionKeys, Excise: false, Accumulate: true, Divider: "_",
			},
			want: map[string][]string{
				"files": {"final_format", "test_data", "test_chunk"},
			},
		},
		{
			name: "section names to matched terms",
			view: View{
				Terms: []string{"parameters"}, Mode: match.ModeSuffix,
				Shape: ShapeKinds, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string]string{"tasks": "parameters"},
		},
		{
			name: "merged section contents",
			view: View{
				Terms: []string{"parameters"}, Mode: match.ModeSuffix,
				Shape: ShapeSectionContents, Excise: true, Accumulate: true, Divider: "_",
			},
			want: map[string]any{"start": "when_ready", "end": "when_done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.Project(tt.view)
			if err != nil {
				t.Fatalf("Project() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectFirstMatch(t *testing.T) {
	st := projectStore(t)

	tests := []struct {
		name string
		view View
		want any
	}{
		{
			name: "first section for mapping shape",
			view: View{
				Terms: []string{"parameters"}, Mode: match.ModeSuffix,
				Shape: ShapeSections, Excise: true, Divider: "_",
			},
			want: map[string]any{"start": "when_ready", "end": "when_done"},
		},
		{
			name: "first element for list shape",
			view: View{
				Terms: []string{"files", "general"}, Mode: match.ModeExact,
				Shape: ShapeKeys, Excise: true,
			},
			want: "general",
		},
		{
			name: "first merged value for section contents",
			view: View{
				Terms: []string{"tasks_parameters"}, Mode: match.ModeExact,
				Shape: ShapeSectionContents, Excise: true,
			},
			want: "when_ready",
		},
		{
			name: "first matched term for kinds",
			view: View{
				Terms: []string{"parameters"}, Mode: match.ModeSuffix,
				Shape: ShapeKinds, Excise: true, Divider: "_",
			},
			want: "parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.Project(tt.view)
			if err != nil {
				t.Fatalf("Project() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectNoMatches(t *testing.T) {
	st := projectStore(t)

	// Accumulating views return empty collections.
	got, err := st.Project(View{
		Terms: []string{"nothing"}, Mode: match.ModeSuffix,
		Shape: ShapeSections, Excise: true, Accumulate: true, Divider: "_",
	})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if m, ok := got.(map[string]map[string]any); !ok || len(m) != 0 {
		t.Errorf("Project() = %v, want empty map", got)
	}

	got, err = st.Project(View{
		Terms: []string{"nothing"}, Mode: match.ModeExact,
		Shape: ShapeKeys, Excise: true, Accumulate: true,
	})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if l, ok := got.([]string); !ok || len(l) != 0 {
		t.Errorf("Project() = %v, want empty list", got)
	}

	// First-match views report the scope that came up empty.
	_, err = st.Project(View{
		Terms: []string{"nothing"}, Mode: match.ModeSuffix,
		Shape: ShapeSections, Excise: true, Divider: "_",
	})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("outer scope error = %v, want ErrSectionNotFound", err)
	}
	_, err = st.Project(View{
		Terms: []string{"nothing"}, Mode: match.ModeSuffix,
		Shape: ShapeSectionKeys, Excise: true, Divider: "_",
	})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("inner scope error = %v, want ErrKeyNotFound", err)
	}
}

func TestProjectValidation(t *testing.T) {
	st := projectStore(t)

	if _, err := st.Project(View{Shape: ShapeSections}); !errors.Is(err, ErrNoTerms) {
		t.Errorf("no terms error = %v, want ErrNoTerms", err)
	}
	if _, err := st.Project(View{Terms: []string{"x"}, Shape: Shape(99)}); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("bad shape error = %v, want ErrUnknownShape", err)
	}
	if _, err := st.Project(View{Terms: []string{"x"}, Mode: match.Mode(99)}); !errors.Is(err, match.ErrUnknownMode) {
		t.Errorf("bad mode error = %v, want match.ErrUnknownMode", err)
	}
}

func TestProjectResultsAreDetached(t *testing.T) {
	st := projectStore(t)
	got, err := st.Project(View{
		Terms: []string{"parameters"}, Mode: match.ModeSuffix,
		Shape: ShapeSections, Excise: true, Accumulate: true, Divider: "_",
	})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	got.(map[string]map[string]any)["tasks"]["start"] = "never"
	if v, _ := st.Lookup("tasks_parameters.start"); v != "when_ready" {
		t.Errorf("store start = %v after result mutation, want when_ready", v)
	}
}

func TestProjectSeesLiveStore(t *testing.T) {
	st := projectStore(t)
	view := View{
		Terms: []string{"parameters"}, Mode: match.ModeSuffix,
		Shape: ShapeSections, Excise: true, Accumulate: true, Divider: "_",
	}

	before, err := st.Project(view)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(before.(map[string]map[string]any)) != 1 {
		t.Fatalf("Project() = %v, want one section", before)
	}

	if err := st.Add("clerk_parameters", map[string]any{"retries": 3}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	after, err := st.Project(view)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	m := after.(map[string]map[string]any)
	if len(m) != 2 || m["clerk"] == nil {
		t.Errorf("Project() after Add = %v, want tasks and clerk", after)
	}
}
