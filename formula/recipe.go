package formula

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/goplus/llar-folly/pkgs/mod/module"
	"github.com/goplus/llar-folly/pkgs/version"
)

// Recipe describes how to obtain, configure, build and package one
// version of a library.
//
// Platform-dependent behavior is held in lookup tables so that the stage
// functions below stay free of per-platform branching.
type Recipe struct {
	Name        string
	Version     string
	Homepage    string
	License     string
	Description string

	// SourceDigest optionally pins the release archive, e.g. "sha256:...".
	SourceDigest string
	// SourceFolder is the canonical directory the extracted archive is
	// renamed to.
	SourceFolder string
	// LicenseFile is copied from SourceFolder into the package.
	LicenseFile string

	// Exports holds files shipped with the recipe itself (patches).
	Exports fs.FS
	Patches []Patch

	DefaultOptions Options
	// OptionPolicy lists, per OS, options that have no meaning there.
	OptionPolicy map[string][]string
	// Toolchains holds minimum compiler versions. Pairs without an entry
	// are unconstrained.
	Toolchains map[Toolchain]string

	Requires            []module.Version
	ConditionalRequires map[Toolchain][]module.Version

	// Libs are always exported, whether or not the install tree shows them.
	Libs []string
	// SystemLibs are appended per OS.
	SystemLibs map[string][]string
	// ExtraLibs are appended for exact compiler versions.
	ExtraLibs []LibRule
}

// LibRule adds Libs when the compiler matches Toolchain, Version and
// Libcxx exactly. Versions compare numerically, so "6" matches "6.0".
type LibRule struct {
	Toolchain Toolchain
	Version   string
	Libcxx    string
	Libs      []string
}

func (r LibRule) matches(s Settings) bool {
	return r.Toolchain == s.Toolchain() &&
		r.Libcxx == s.Compiler.Libcxx &&
		version.Valid(s.Compiler.Version) &&
		version.Equal(s.Compiler.Version, r.Version)
}

// Patch is a diff shipped in Recipe.Exports and applied to the source
// folder. Strip drops leading path components from file names, like
// patch -p.
type Patch struct {
	Path  string
	Strip int
}

// Ref returns the "name/version" reference of the recipe.
func (r *Recipe) Ref() module.Version {
	return module.Version{Path: r.Name, Version: r.Version}
}

// ConfigureOptions returns the options that are meaningful under s: the
// declared defaults overridden by the declared options in opts, minus
// those the OS policy removes. Undeclared names in opts are ignored and
// opts is not modified.
func (r *Recipe) ConfigureOptions(s Settings, opts Options) Options {
	out := r.DefaultOptions.Clone()
	for name, v := range opts {
		if out.Has(name) {
			out[name] = v
		}
	}
	return out.Without(r.OptionPolicy[s.OS]...)
}

// ValidateEnvironment checks the compiler against the minimum version
// table. It has no side effects.
func (r *Recipe) ValidateEnvironment(s Settings) error {
	tc := s.Toolchain()
	minVer, ok := r.Toolchains[tc]
	if !ok {
		return nil
	}
	if !version.Valid(s.Compiler.Version) {
		return fmt.Errorf("%w: %s version %q is not a version number", ErrUnsupportedToolchain, tc.Compiler, s.Compiler.Version)
	}
	if version.Less(s.Compiler.Version, minVer) {
		return fmt.Errorf("%w: the minimal %s version on %s is %s, got %s",
			ErrUnsupportedToolchain, tc.Compiler, tc.OS, minVer, s.Compiler.Version)
	}
	return nil
}

// DeclareRequirements returns the base requirements followed by the
// ones conditional on the (os, compiler) pair of s.
func (r *Recipe) DeclareRequirements(s Settings) []module.Version {
	reqs := slices.Clone(r.Requires)
	return append(reqs, r.ConditionalRequires[s.Toolchain()]...)
}

// ArchiveURL returns the release archive URL. It depends on the homepage
// and version only.
func (r *Recipe) ArchiveURL() string {
	return fmt.Sprintf("%s/archive/v%s.tar.gz", strings.TrimSuffix(r.Homepage, "/"), r.Version)
}

// ExtractedDir is the directory name the release archive unpacks to.
// The layout is a precondition on the upstream archive, not something
// the recipe checks ahead of time.
func (r *Recipe) ExtractedDir() string {
	return r.Name + "-" + r.Version
}

// OutputLibraries computes the link libraries for consumers: the
// discovered ones, the recipe's own, the OS system libraries, then the
// exact-version extras. Duplicates keep their first position.
func (r *Recipe) OutputLibraries(discovered []string, s Settings) []string {
	var libs []string
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, name := range names {
			if name != "" && !seen[name] {
				seen[name] = true
				libs = append(libs, name)
			}
		}
	}
	add(discovered...)
	add(r.Libs...)
	add(r.SystemLibs[s.OS]...)
	for _, rule := range r.ExtraLibs {
		if rule.matches(s) {
			add(rule.Libs...)
		}
	}
	return libs
}
