package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/internal/profile"
	"github.com/goplus/llar-folly/recipes/folly"
)

// recipes maps recipe names to their constructors.
var recipes = map[string]func() *formula.Recipe{
	"folly": folly.New,
}

// lookupRecipe finds the recipe named by arg, "name" or "name@version".
func lookupRecipe(arg string) (*formula.Recipe, error) {
	name, version := parseModuleArg(arg)
	newRecipe, ok := recipes[name]
	if !ok {
		return nil, fmt.Errorf("unknown recipe %q (available: %s)", name, strings.Join(slices.Sorted(maps.Keys(recipes)), ", "))
	}
	r := newRecipe()
	if version != "" && version != r.Version {
		return nil, fmt.Errorf("recipe %s has version %s, not %s", name, r.Version, version)
	}
	return r, nil
}

// parseModuleArg parses a module argument in the form "name@version" or "name".
func parseModuleArg(arg string) (name, version string) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '@' {
			return arg[:i], arg[i+1:]
		}
	}
	return arg, ""
}

// profileFlags are the settings flags shared by the recipe commands.
type profileFlags struct {
	path            string
	os              string
	arch            string
	buildType       string
	compiler        string
	compilerVersion string
	libcxx          string
	options         []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.path, "profile", "p", "", "Profile file (yaml, toml or json)")
	fs.StringVar(&f.os, "os", "", "Target operating system (Linux, Macos, Windows)")
	fs.StringVar(&f.arch, "arch", "", "Target architecture")
	fs.StringVar(&f.buildType, "build-type", "", "Build type (Debug, Release, RelWithDebInfo, MinSizeRel)")
	fs.StringVar(&f.compiler, "compiler", "", "Compiler (gcc, clang, apple-clang, \"Visual Studio\")")
	fs.StringVar(&f.compilerVersion, "compiler-version", "", "Compiler version")
	fs.StringVar(&f.libcxx, "libcxx", "", "C++ standard library (libstdc++, libstdc++11, libc++)")
	fs.StringArrayVarP(&f.options, "option", "O", nil, "Recipe option as name=value, repeatable")
}

// load builds the profile for r. Flags the user set override the
// profile file and the environment.
func (f *profileFlags) load(cmd *cobra.Command, r *formula.Recipe) (*profile.Profile, error) {
	overrides := make(map[string]any)
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}
	set("os", "settings.os", f.os)
	set("arch", "settings.arch", f.arch)
	set("build-type", "settings.build_type", f.buildType)
	set("compiler", "settings.compiler.name", f.compiler)
	set("compiler-version", "settings.compiler.version", f.compilerVersion)
	set("libcxx", "settings.compiler.libcxx", f.libcxx)

	opts, err := formula.ParseOptions(f.options)
	if err != nil {
		return nil, err
	}
	for name, value := range opts {
		overrides["options."+name] = value
	}

	p, err := profile.Load(profile.LoadOptions{
		Path:      f.path,
		Defaults:  formula.HostSettings(formula.Compiler{Name: formula.GCC}),
		Declared:  r.DefaultOptions,
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("profile loaded", "settings", fmt.Sprintf("%+v", p.Settings), "options", p.Options.String())
	return p, nil
}
