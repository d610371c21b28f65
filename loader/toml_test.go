package loader

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/settle"
)

func TestTOMLLoad(t *testing.T) {
	data := []byte(`verbose = true

[general]
seed = 43
ratio = 4.3

[files]
source_format = "csv"
interim_format = "csv"
things = ["a", "b"]

[files.paths]
root = "/data"

[tasks_parameters]
start = "when_ready"
`)

	got, err := TOMLLoader{}.Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []settle.Entry{
		{Key: "verbose", Value: true},
		{Key: "general", Value: []settle.Entry{
			{Key: "seed", Value: int64(43)},
			{Key: "ratio", Value: 4.3},
		}},
		{Key: "files", Value: []settle.Entry{
			{Key: "source_format", Value: "csv"},
			{Key: "interim_format", Value: "csv"},
			{Key: "things", Value: []any{"a", "b"}},
			{Key: "paths", Value: map[string]any{"root": "/data"}},
		}},
		{Key: "tasks_parameters", Value: []settle.Entry{
			{Key: "start", Value: "when_ready"},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestTOMLLoadEmpty(t *testing.T) {
	got, err := TOMLLoader{}.Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want no entries", got)
	}
}

func TestTOMLLoadError(t *testing.T) {
	_, err := TOMLLoader{}.Load([]byte("[unclosed\n"))
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
	var pe *settle.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *settle.ParseError", err)
	}
	if pe.Line == 0 {
		t.Errorf("ParseError line = 0, want position from decoder")
	}
}

func TestTOMLDefaults(t *testing.T) {
	l := TOMLLoader{}
	if l.InferByDefault() {
		t.Error("InferByDefault() = true, want false for a typed format")
	}
	if got := l.Extensions(); !reflect.DeepEqual(got, []string{"toml"}) {
		t.Errorf("Extensions() = %v", got)
	}
}
