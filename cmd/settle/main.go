// Package main is the entry point for the settle CLI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/settle"
	"github.com/dshills/settle/loader"
	"github.com/dshills/settle/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type cliOptions struct {
	source     string
	terms      string
	mode       string
	shape      string
	divider    string
	excise     bool
	accumulate bool
	infer      bool
	inferSet   bool
	envPrefix  string
}

func run() int {
	opts := parseFlags()

	var storeOpts []settle.Option
	if opts.inferSet {
		storeOpts = append(storeOpts, settle.WithInference(opts.infer))
	}

	var st *settle.Store
	var err error
	if opts.source != "" {
		st, err = settle.Create(opts.source, storeOpts...)
	} else {
		st, err = settle.New(nil, storeOpts...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.envPrefix != "" {
		if err := overlayEnviron(st, opts.envPrefix, storeOpts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	out, err := render(st, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(out)
	return 0
}

func parseFlags() cliOptions {
	var opts cliOptions
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.source, "source", "", "Path to the settings file")
	flag.StringVar(&opts.source, "s", "", "Path to the settings file (shorthand)")
	flag.StringVar(&opts.terms, "terms", "", "Comma-separated view terms; selects projection output")
	flag.StringVar(&opts.terms, "t", "", "Comma-separated view terms (shorthand)")
	flag.StringVar(&opts.mode, "mode", "exact", "Term match mode (exact, prefix, suffix)")
	flag.StringVar(&opts.mode, "m", "exact", "Term match mode (shorthand)")
	flag.StringVar(&opts.shape, "shape", "sections", "Projection shape (sections, section_contents, contents, keys, kinds, section_keys, section_kinds)")
	flag.StringVar(&opts.divider, "divider", "", "Divider between a term and the rest of a name")
	flag.BoolVar(&opts.excise, "excise", true, "Strip matched terms from section names")
	flag.BoolVar(&opts.accumulate, "accumulate", true, "Collect every match instead of the first")
	flag.BoolVar(&opts.infer, "infer", false, "Force scalar inference on or off (default: per-format)")
	flag.StringVar(&opts.envPrefix, "env-prefix", "", "Overlay environment variables with this prefix")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Settle - sectioned settings inspector\n\n")
		fmt.Fprintf(os.Stderr, "Usage: settle [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  settle -source settings.toml                         Print the whole store\n")
		fmt.Fprintf(os.Stderr, "  settle -s s.yaml -t parameters -m suffix -divider _  Print a projection\n")
		fmt.Fprintf(os.Stderr, "  settle -s s.json -env-prefix MYAPP                   Overlay environment settings\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Settle %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// WithInference is a tri-state: only forward the flag when the user
	// actually set it, so per-format defaults stay in charge otherwise.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "infer" {
			opts.inferSet = true
		}
	})

	if opts.source == "" && opts.envPrefix == "" {
		fmt.Fprintf(os.Stderr, "Error: -source or -env-prefix is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	return opts
}

// overlayEnviron merges prefixed environment variables over the store.
func overlayEnviron(st *settle.Store, prefix string, opts []settle.Option) error {
	prefix = strings.ToUpper(prefix)
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	env, err := settle.New(loader.Environ(prefix), opts...)
	if err != nil {
		return err
	}
	var addErr error
	env.Range(func(name string, sec *settle.Section) bool {
		addErr = st.Add(name, sec)
		return addErr == nil
	})
	return addErr
}

func render(st *settle.Store, opts cliOptions) (string, error) {
	if opts.terms == "" {
		return renderStore(st)
	}

	d, err := buildDescriptor(opts)
	if err != nil {
		return "", err
	}
	result, err := d.Apply(st)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// renderStore produces the whole store as JSON with sections and keys
// in store order. encoding/json sorts map keys, so the document is
// assembled with sjson instead.
func renderStore(st *settle.Store) (string, error) {
	out := "{}"
	var buildErr error
	st.Range(func(name string, sec *settle.Section) bool {
		secPath := escapePath(name)
		out, buildErr = sjson.SetRaw(out, secPath, "{}")
		if buildErr != nil {
			return false
		}
		sec.Range(func(key string, value any) bool {
			out, buildErr = sjson.Set(out, secPath+"."+escapePath(key), value)
			return buildErr == nil
		})
		return buildErr == nil
	})
	if buildErr != nil {
		return "", buildErr
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(out))), "\n"), nil
}

func buildDescriptor(opts cliOptions) (settle.Descriptor, error) {
	d := settle.NewDescriptor(splitTerms(opts.terms)...).
		WithExcise(opts.excise).
		WithAccumulate(opts.accumulate).
		WithDivider(opts.divider)

	mode, err := match.ParseMode(opts.mode)
	if err != nil {
		return settle.Descriptor{}, err
	}
	d = d.WithMode(mode)

	shape, err := settle.ParseShape(opts.shape)
	if err != nil {
		return settle.Descriptor{}, err
	}
	return d.WithShape(shape), nil
}

func splitTerms(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// escapePath escapes sjson path metacharacters in one key.
var pathEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
