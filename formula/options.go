package formula

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Options maps option names to their values.
//
// Options are values: every method returns a new map and leaves the
// receiver untouched, so a stage never observes another stage's edits.
type Options map[string]bool

// Clone returns a copy of o.
func (o Options) Clone() Options {
	if o == nil {
		return Options{}
	}
	return maps.Clone(o)
}

// Has reports whether the option is declared.
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// Get returns the option value and whether it is declared.
func (o Options) Get(name string) (value, ok bool) {
	value, ok = o[name]
	return
}

// Without returns a copy of o with names removed.
func (o Options) Without(names ...string) Options {
	out := o.Clone()
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// Merge returns a copy of o with values taken from overrides. Overriding
// an option o does not declare is an error; options are never added.
func (o Options) Merge(overrides Options) (Options, error) {
	out := o.Clone()
	for _, name := range overrides.Names() {
		if !o.Has(name) {
			return nil, fmt.Errorf("unknown option %q (declared: %s)", name, strings.Join(o.Names(), ", "))
		}
		out[name] = overrides[name]
	}
	return out, nil
}

// SubsetOf reports whether every option in o is declared in decl.
func (o Options) SubsetOf(decl Options) bool {
	for name := range o {
		if !decl.Has(name) {
			return false
		}
	}
	return true
}

// Names returns the option names in sorted order.
func (o Options) Names() []string {
	return slices.Sorted(maps.Keys(o))
}

// String formats o as "name=value" pairs in name order.
func (o Options) String() string {
	parts := make([]string, 0, len(o))
	for _, name := range o.Names() {
		parts = append(parts, name+"="+strconv.FormatBool(o[name]))
	}
	return strings.Join(parts, " ")
}

// ParseOptions parses "name=value" assignments such as "shared=True".
func ParseOptions(assignments []string) (Options, error) {
	out := Options{}
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed option %q: want name=value", a)
		}
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}
