package loader

import (
	"gopkg.in/ini.v1"

	"github.com/dshills/settle"
)

// INILoader loads settings from INI sources. Section and key order
// follow the file. Keys written before any section header land in the
// DEFAULT section, which surfaces under its literal name when it has
// contents. INI carries no types, so every value is a raw string and
// inference is on by default.
type INILoader struct{}

var _ settle.Loader = INILoader{}

func init() {
	settle.RegisterLoader(INILoader{})
}

// Extensions lists the file extensions this loader claims.
func (INILoader) Extensions() []string { return []string{"ini", "cfg"} }

// InferByDefault reports whether inference runs when the caller did not
// choose.
func (INILoader) InferByDefault() bool { return true }

// Load parses INI data into ordered entries.
func (INILoader) Load(data []byte) ([]settle.Entry, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, &settle.ParseError{Message: err.Error(), Err: err}
	}

	var entries []settle.Entry
	for _, sec := range cfg.Sections() {
		keys := sec.Keys()
		if sec.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		contents := make([]settle.Entry, 0, len(keys))
		for _, key := range keys {
			contents = append(contents, settle.Entry{Key: key.Name(), Value: key.Value()})
		}
		entries = append(entries, settle.Entry{Key: sec.Name(), Value: contents})
	}
	return entries, nil
}
