// Package watch reloads settings stores when their source files change.
//
// A Watcher multiplexes one fsnotify instance across any number of
// watched files. It watches parent directories rather than the files
// themselves, so a subscription survives editors that save by writing
// a temporary file and renaming it over the original. Rapid event
// bursts for one path are debounced into a single delivery. Settings
// ties a watched path back to settle.Create for the common reload
// loop.
package watch

import (
	"errors"
	"strings"
	"time"
)

// ErrWatcherClosed is returned when subscribing on a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Op is a bitmask of file system operations observed for a path.
// Debouncing merges the operations of a burst, so a delivered event
// often carries more than one bit.
type Op uint8

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed.
	OpRename
	// OpChmod indicates the file permissions changed.
	OpChmod
)

// Has returns true if the operation includes all bits of o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// String returns the set operations joined with "|".
func (op Op) String() string {
	var parts []string
	if op.Has(OpCreate) {
		parts = append(parts, "CREATE")
	}
	if op.Has(OpWrite) {
		parts = append(parts, "WRITE")
	}
	if op.Has(OpRemove) {
		parts = append(parts, "REMOVE")
	}
	if op.Has(OpRename) {
		parts = append(parts, "RENAME")
	}
	if op.Has(OpChmod) {
		parts = append(parts, "CHMOD")
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Event is one debounced change notification for a watched path.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op is the merged set of operations observed in the burst.
	Op Op

	// Timestamp is when the last operation of the burst arrived.
	Timestamp time.Time
}

// Handler receives events for one subscription. Handlers run
// sequentially on the watcher's event goroutine; they must not block
// and must not call Close.
type Handler func(Event)

// Config holds watcher settings.
type Config struct {
	// Debounce is how long a path must stay quiet before its merged
	// event is delivered. Default: 100ms.
	Debounce time.Duration

	// BufferSize is the capacity of the internal delivery channel.
	// Default: 100.
	BufferSize int

	// OnError receives fsnotify errors. Nil discards them.
	OnError func(error)
}

// DefaultConfig returns a Config with the default settings.
func DefaultConfig() Config {
	return Config{
		Debounce:   100 * time.Millisecond,
		BufferSize: 100,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounce sets the quiet window before an event is delivered.
// Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Debounce = d
		}
	}
}

// WithBufferSize sets the delivery channel capacity. Non-positive
// values are ignored.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithErrorHandler sets the callback for fsnotify errors.
func WithErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.OnError = h
	}
}
