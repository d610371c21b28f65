package settle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultGlobalSection is the section that adopts top-level values which
// arrive without a section of their own, such as dotenv keys.
const DefaultGlobalSection = "general"

// Entry is one ordered key/value pair of a settings source. Loaders emit
// []Entry so that document order survives into the store. Value may be a
// scalar, a nested []Entry or map[string]any (a section), or a []any
// list.
type Entry struct {
	Key   string
	Value any
}

// Loader parses one settings format into ordered entries.
// Implementations register themselves with RegisterLoader, usually from
// an init function, and Create selects them by file extension.
type Loader interface {
	// Load parses raw source bytes into ordered top-level entries.
	Load(data []byte) ([]Entry, error)
	// Extensions lists the file extensions (without the dot) the loader
	// claims.
	Extensions() []string
	// InferByDefault reports whether sources in this format should get
	// scalar inference when the caller did not choose explicitly.
	InferByDefault() bool
}

var (
	loadersMu sync.RWMutex
	loaders   = make(map[string]Loader)
)

// RegisterLoader makes l available to Create for its extensions. Later
// registrations win, so an application can replace a stock format.
func RegisterLoader(l Loader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	for _, ext := range l.Extensions() {
		loaders[strings.ToLower(ext)] = l
	}
}

// LoaderFor returns the loader registered for ext (without the dot).
func LoaderFor(ext string) (Loader, bool) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	l, ok := loaders[strings.ToLower(ext)]
	return l, ok
}

// FileSystem abstracts file access for Create so sources can live on
// disk, in memory, or inside an embedded filesystem. fstest.MapFS
// satisfies it out of the box.
type FileSystem interface {
	fs.FS
	ReadFile(name string) ([]byte, error)
	Stat(name string) (fs.FileInfo, error)
}

// OSFS is the live filesystem.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }

// ReadFile reads the named file.
func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Stat returns file info for the named file.
func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// New builds a store from already-loaded contents: a map[string]any or
// map[string]map[string]any (keys sorted, since Go maps carry no order),
// an ordered []Entry, another *Store (deep copy), or nil for an empty
// store. Defaults merge underneath the contents, and unless WithInference
// says otherwise every string leaf is passed through scalar inference.
func New(contents any, opts ...Option) (*Store, error) {
	return construct(contents, buildOptions(opts))
}

// Create builds a store from any supported source. A string is treated
// as a file path: the extension picks a registered loader (import the
// loader subpackage to register the stock formats), the file is read
// through the configured FileSystem, and the loader's entries are
// constructed into a store. When WithInference was not given, the
// loader's per-format default decides whether inference runs. Any other
// source type is handed to New.
func Create(source any, opts ...Option) (*Store, error) {
	if path, ok := source.(string); ok {
		return createFromPath(path, opts)
	}
	return New(source, opts...)
}

func createFromPath(path string, opts []Option) (*Store, error) {
	o := buildOptions(opts)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no file extension", ErrSourceType, path)
	}
	l, ok := LoaderFor(ext)
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for .%s files", ErrSourceType, ext)
	}
	data, err := o.fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := l.Load(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			if pe.Path == "" {
				pe.Path = path
			}
			return nil, err
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if o.infer == nil {
		byDefault := l.InferByDefault()
		o.infer = &byDefault
	}
	return construct(entries, o)
}

// construct runs the full build pipeline: fill, merge defaults, infer,
// bind descriptors.
func construct(contents any, o options) (*Store, error) {
	st := &Store{
		sections:   make(map[string]*Section),
		policy:     o.policy,
		globalName: o.global,
	}
	st.infer = o.inferOrDefault(true)

	entries, err := topEntries(contents)
	if err != nil {
		return nil, err
	}
	if err := st.fillFrom(entries); err != nil {
		return nil, err
	}

	defaults, err := topEntries(o.defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	if err := st.mergeDefaults(defaults); err != nil {
		return nil, err
	}

	if st.infer {
		st.applyInference()
	}
	for name, d := range o.descriptors {
		st.Bind(name, d)
	}
	return st, nil
}
