package registry

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/property"
)

// reservedNames are hyphenated names the HTML standard reserves.
var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateTagName checks that name is a valid custom element name:
// a lowercase ASCII letter first, at least one hyphen, and only lowercase
// letters, digits, '-', '.' and '_'.
func ValidateTagName(name string) error {
	invalid := func(detail string) error {
		return errors.New(errors.CodeInvalidTagName).WithSubject(name).WithDetail(detail)
	}
	if name == "" {
		return invalid("The tag name is empty.")
	}
	if name[0] < 'a' || name[0] > 'z' {
		return invalid("Custom element names must start with a lowercase ASCII letter.")
	}
	hyphen := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '-':
			hyphen = true
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '.', c == '_':
		default:
			return invalid("Custom element names may only contain lowercase letters, digits, '-', '.' and '_'.")
		}
	}
	if !hyphen {
		return invalid("Custom element names must contain a hyphen.")
	}
	if reservedNames[name] {
		return invalid("The name is reserved by the HTML standard.")
	}
	return nil
}

// Entry is one registered definition.
type Entry struct {
	Definition *component.Definition

	// Base is the builtin the definition customizes. It is the zero
	// Builtin for autonomous elements.
	Base Builtin
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithElementOptions sets options applied to every element Create builds,
// before the options passed to Create.
func WithElementOptions(opts ...component.Option) Option {
	return func(r *Registry) { r.elementOpts = append(r.elementOpts, opts...) }
}

// Registry holds element definitions. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	logger      *slog.Logger
	elementOpts []component.Option
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "registry")
	return r
}

// Define registers def under def.TagName.
func (r *Registry) Define(def *component.Definition) error {
	if def == nil {
		return errors.New(errors.CodeInvalidTagName).WithDetail("The definition is nil.")
	}
	if err := ValidateTagName(def.TagName); err != nil {
		return err
	}

	var base Builtin
	if def.Extends != "" {
		b, ok := LookupBuiltin(def.Extends)
		if !ok {
			return errors.New(errors.CodeUnknownBase).WithSubject(def.Extends)
		}
		base = b
	}
	if _, err := property.NewStore(def.Properties); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[def.TagName]; dup {
		return errors.New(errors.CodeAlreadyDefined).WithSubject(def.TagName)
	}
	r.entries[def.TagName] = Entry{Definition: def, Base: base}
	r.logger.Debug("element defined", "tag", def.TagName, "extends", def.Extends)
	return nil
}

// Lookup returns the definition registered for tag.
func (r *Registry) Lookup(tag string) (*component.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tag]
	return e.Definition, ok
}

// Create builds and initializes a new element for tag.
func (r *Registry) Create(tag string, opts ...component.Option) (*component.Element, error) {
	def, ok := r.Lookup(tag)
	if !ok {
		return nil, errors.New(errors.CodeUnknownElement).WithSubject(tag)
	}
	all := make([]component.Option, 0, len(r.elementOpts)+len(opts))
	all = append(all, r.elementOpts...)
	all = append(all, opts...)

	el, err := component.New(def, all...)
	if err != nil {
		return nil, err
	}
	if err := el.Initialize(); err != nil {
		return nil, err
	}
	return el, nil
}

// Entries returns every registered definition sorted by tag.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.Definition.TagName < b.Definition.TagName:
			return -1
		case a.Definition.TagName > b.Definition.TagName:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Builtins returns the builtin catalogue.
func (r *Registry) Builtins() []Builtin {
	return Builtins()
}
