// Package cmake wraps the cmake configure/build/install workflow.
package cmake

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/pkgs/buildsys"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake drives CMake-based builds.
type CMake struct {
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	defines    map[string]defineValue
	env        map[string]string

	stdout io.Writer
	stderr io.Writer
	run    func(cmd *exec.Cmd) error
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New returns a CMake that builds in buildDir and installs to installDir.
func New(buildDir, installDir string) *CMake {
	return &CMake{
		buildDir:   buildDir,
		installDir: installDir,
		defines:    make(map[string]defineValue),
		env:        make(map[string]string),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		run:        (*exec.Cmd).Run,
	}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

// Output redirects the output of every cmake invocation.
func (c *CMake) Output(stdout, stderr io.Writer) *CMake {
	c.stdout, c.stderr = stdout, stderr
	return c
}

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) *CMake {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) *CMake {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
	return c
}

// Env sets key=value for every cmake invocation.
func (c *CMake) Env(key, value string) *CMake {
	c.env[key] = value
	return c
}

// Settings maps recipe settings and options onto CMake variables:
// the build type, BUILD_SHARED_LIBS for "shared" and
// CMAKE_POSITION_INDEPENDENT_CODE for "fPIC". Options absent from opts
// leave CMake's defaults alone.
func (c *CMake) Settings(s formula.Settings, opts formula.Options) *CMake {
	if s.BuildType != "" {
		c.BuildType(s.BuildType)
	}
	if shared, ok := opts.Get("shared"); ok {
		c.DefineBool("BUILD_SHARED_LIBS", shared)
	}
	if fpic, ok := opts.Get("fPIC"); ok {
		c.DefineBool("CMAKE_POSITION_INDEPENDENT_CODE", fpic)
	}
	if s.Compiler.Name == formula.Clang && s.Compiler.Libcxx == "libc++" {
		c.appendFlag("CXXFLAGS", "-stdlib=libc++")
	}
	return c
}

// Use makes a dependency installed at root visible to CMake and the
// compilers: headers, libraries and pkg-config files.
func (c *CMake) Use(root string) {
	includeDir := filepath.Join(root, "include")
	libDir := filepath.Join(root, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if _, err := os.Stat(pkgconfigDir); err == nil {
		c.prependPath("PKG_CONFIG_PATH", pkgconfigDir)
	}
	c.prependPath("CMAKE_PREFIX_PATH", root)
	if _, err := os.Stat(includeDir); err == nil {
		c.prependPath("CMAKE_INCLUDE_PATH", includeDir)
	}
	if _, err := os.Stat(libDir); err == nil {
		c.prependPath("CMAKE_LIBRARY_PATH", libDir)
	}

	if runtime.GOOS == "windows" {
		if _, err := os.Stat(includeDir); err == nil {
			c.prependPath("INCLUDE", includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			c.prependPath("LIB", libDir)
		}
	} else {
		if _, err := os.Stat(includeDir); err == nil {
			c.appendFlag("CPPFLAGS", "-I"+includeDir)
		}
		if _, err := os.Stat(libDir); err == nil {
			c.appendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}

// Configure runs "cmake -S <source> -B <build>" with all configured options.
func (c *CMake) Configure(ctx context.Context, sourceDir string) (*buildsys.Config, error) {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return nil, err
	}
	args := []string{"-S", sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	args = append(args, c.definesArgs()...)
	if err := c.runCMake(ctx, args); err != nil {
		return nil, fmt.Errorf("cmake configure: %w", err)
	}
	return &buildsys.Config{
		SourceDir:  sourceDir,
		BuildDir:   c.buildDir,
		InstallDir: c.installDir,
		BuildType:  c.buildType,
		Args:       args,
	}, nil
}

// Build runs "cmake --build <build>".
func (c *CMake) Build(ctx context.Context, cfg *buildsys.Config) error {
	args := []string{"--build", cfg.BuildDir}
	if cfg.BuildType != "" {
		args = append(args, "--config", cfg.BuildType)
	}
	if err := c.runCMake(ctx, args); err != nil {
		return fmt.Errorf("cmake build: %w", err)
	}
	return nil
}

// Install runs "cmake --install <build>".
func (c *CMake) Install(ctx context.Context, cfg *buildsys.Config) error {
	args := []string{"--install", cfg.BuildDir}
	if cfg.BuildType != "" {
		args = append(args, "--config", cfg.BuildType)
	}
	if cfg.InstallDir != "" {
		args = append(args, "--prefix", cfg.InstallDir)
	}
	if err := c.runCMake(ctx, args); err != nil {
		return fmt.Errorf("cmake install: %w", err)
	}
	return nil
}

func (c *CMake) runCMake(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "cmake", args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	if len(c.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.env)
	}
	return c.run(cmd)
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}

func (c *CMake) getenv(key string) string {
	if v, ok := c.env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// prependPath prepends value to a PATH-style variable.
func (c *CMake) prependPath(key, value string) {
	if cur := c.getenv(key); cur != "" {
		value += string(os.PathListSeparator) + cur
	}
	c.env[key] = value
}

// appendFlag appends a space-separated flag to a variable.
func (c *CMake) appendFlag(key, flag string) {
	if cur := c.getenv(key); cur != "" {
		flag = cur + " " + flag
	}
	c.env[key] = flag
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
