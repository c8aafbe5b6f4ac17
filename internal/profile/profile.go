// Package profile loads the settings and options a recipe is built with.
//
// Values are layered, later ones winning: host defaults, the profile
// file, LLAR_* environment variables, then explicit overrides such as
// command line flags. Keys are dotted paths:
//
//	settings.os                 LLAR_SETTINGS_OS
//	settings.arch               LLAR_SETTINGS_ARCH
//	settings.build_type         LLAR_SETTINGS_BUILD_TYPE
//	settings.compiler.name      LLAR_SETTINGS_COMPILER_NAME
//	settings.compiler.version   LLAR_SETTINGS_COMPILER_VERSION
//	settings.compiler.libcxx    LLAR_SETTINGS_COMPILER_LIBCXX
//	options.<name>              LLAR_OPTIONS_<NAME>
package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/goplus/llar-folly/formula"
)

// EnvPrefix prefixes the environment variables a profile reads.
const EnvPrefix = "LLAR"

// Profile is a decoded and validated build profile.
type Profile struct {
	Settings formula.Settings `mapstructure:"settings"`
	Options  formula.Options  `mapstructure:"options"`
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is a profile file in any format viper reads (yaml, toml,
	// json...). Empty means no file.
	Path string
	// Defaults are used for settings nothing else provides.
	Defaults formula.Settings
	// Declared are the options of the recipe with their default values.
	// Profile options must name one of them.
	Declared formula.Options
	// Overrides are applied last, keyed like the file.
	Overrides map[string]any
}

var validate = validator.New()

// Load reads a profile.
func Load(opts LoadOptions) (*Profile, error) {
	v := viper.New()

	d := opts.Defaults
	v.SetDefault("settings.os", d.OS)
	v.SetDefault("settings.arch", d.Arch)
	v.SetDefault("settings.build_type", d.BuildType)
	v.SetDefault("settings.compiler.name", d.Compiler.Name)
	v.SetDefault("settings.compiler.version", d.Compiler.Version)
	v.SetDefault("settings.compiler.libcxx", d.Compiler.Libcxx)
	for name, value := range opts.Declared {
		v.SetDefault("options."+name, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read profile %s: %w", opts.Path, err)
		}
	}
	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var raw struct {
		Settings formula.Settings `mapstructure:"settings"`
		Options  map[string]bool  `mapstructure:"options"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := validate.Struct(raw.Settings); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	options, err := resolveOptions(raw.Options, opts.Declared)
	if err != nil {
		return nil, err
	}
	return &Profile{Settings: raw.Settings, Options: options}, nil
}

// resolveOptions restores the declared spelling of option names, which
// viper folds to lower case, and merges them over the declared defaults.
func resolveOptions(values map[string]bool, declared formula.Options) (formula.Options, error) {
	overrides := formula.Options{}
	for key, value := range values {
		name := key
		for _, d := range declared.Names() {
			if strings.EqualFold(d, key) {
				name = d
				break
			}
		}
		overrides[name] = value
	}
	return declared.Merge(overrides)
}
