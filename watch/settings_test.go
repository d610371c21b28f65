package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/settle"
	_ "github.com/dshills/settle/loader"
	"github.com/fsnotify/fsnotify"
)

func TestSettingsReload(t *testing.T) {
	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "settings.ini")
	stores := make(chan *settle.Store, 4)
	errs := make(chan error, 4)
	apply := func(st *settle.Store, err error) {
		if err != nil {
			errs <- err
			return
		}
		stores <- st
	}
	if _, err := Settings(w, path, apply); err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[general]\nseed = 43\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	select {
	case st := <-stores:
		if v, err := st.GetInt("general.seed"); err != nil || v != 43 {
			t.Errorf("GetInt(general.seed) = %v, %v, want 43", v, err)
		}
	case err := <-errs:
		t.Fatalf("reload error = %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	if err := os.WriteFile(path, []byte("[general]\nseed = 44\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	// A straggler from the first write may still deliver seed 43, so
	// drain until the rewrite shows up.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-stores:
			v, err := st.GetInt("general.seed")
			if err != nil {
				t.Fatalf("GetInt(general.seed) error = %v", err)
			}
			if v == 44 {
				return
			}
		case err := <-errs:
			t.Fatalf("reload error = %v", err)
		case <-deadline:
			t.Fatal("timeout waiting for second reload")
		}
	}
}

func TestSettingsOptionsCarryOver(t *testing.T) {
	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "settings.ini")
	stores := make(chan *settle.Store, 4)
	apply := func(st *settle.Store, err error) {
		if err == nil {
			stores <- st
		}
	}
	if _, err := Settings(w, path, apply, settle.WithInference(false)); err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[general]\nseed = 43\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	select {
	case st := <-stores:
		if v, err := st.GetString("general.seed"); err != nil || v != "43" {
			t.Errorf("GetString(general.seed) = %q, %v, want \"43\"", v, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestSettingsReportsParseError(t *testing.T) {
	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "settings.toml")
	errs := make(chan error, 4)
	apply := func(st *settle.Store, err error) {
		if err != nil {
			errs <- err
		}
	}
	if _, err := Settings(w, path, apply); err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[general\nseed = 43\n"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	select {
	case err := <-errs:
		var pe *settle.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("reload error = %v, want *settle.ParseError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload error")
	}
}

func TestSettingsSkipsChmod(t *testing.T) {
	w, err := New(WithDebounce(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	path := filepath.Join(t.TempDir(), "settings.toml")
	called := make(chan struct{}, 1)
	apply := func(*settle.Store, error) { called <- struct{}{} }
	if _, err := Settings(w, path, apply); err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	w.handleFSEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})

	select {
	case <-called:
		t.Error("chmod-only event should not reload")
	case <-time.After(200 * time.Millisecond):
	}
}
