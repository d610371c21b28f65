package settle

// options collects construction settings before a store exists.
type options struct {
	defaults    any
	infer       *bool
	policy      DeletePolicy
	global      string
	descriptors map[string]Descriptor
	fsys        FileSystem
}

func buildOptions(opts []Option) options {
	o := options{global: DefaultGlobalSection, fsys: OSFS{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// inferOrDefault resolves the tri-state inference choice.
func (o options) inferOrDefault(fallback bool) bool {
	if o.infer != nil {
		return *o.infer
	}
	return fallback
}

// Option configures store construction.
type Option func(*options)

// WithDefaults supplies fallback settings that merge underneath the
// loaded contents: sections absent from the contents are adopted
// wholesale, shared sections merge key-by-key with the contents winning.
// Accepts the same mapping forms as New.
func WithDefaults(defaults any) Option {
	return func(o *options) { o.defaults = defaults }
}

// WithInference forces scalar inference on or off. When the option is
// absent, New infers and Create follows the loader's per-format default
// (typed formats like TOML and YAML skip inference, untyped ones like
// INI and dotenv apply it).
func WithInference(enabled bool) Option {
	return func(o *options) { o.infer = &enabled }
}

// WithDeletePolicy selects how Delete treats missing sections.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithGlobalSection names the section that adopts top-level values
// arriving without a section of their own. Default is
// DefaultGlobalSection.
func WithGlobalSection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.global = name
		}
	}
}

// WithDescriptors binds named view descriptors onto the constructed
// store, as if Bind were called for each pair.
func WithDescriptors(bindings map[string]Descriptor) Option {
	return func(o *options) {
		if o.descriptors == nil {
			o.descriptors = make(map[string]Descriptor, len(bindings))
		}
		for name, d := range bindings {
			o.descriptors[name] = d
		}
	}
}

// WithFileSystem routes Create's file reads through fsys instead of the
// live filesystem.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}
