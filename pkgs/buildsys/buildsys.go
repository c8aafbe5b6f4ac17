package buildsys

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Config is a generated build configuration: the result of a successful
// configure step, consumed by Build and Install.
type Config struct {
	SourceDir  string
	BuildDir   string
	InstallDir string
	BuildType  string
	Args       []string // arguments the configure step ran with
}

// BuildSystem captures shared capabilities of build helpers (CMake, etc).
// It keeps the common lifecycle and dependency/env setup; implementations
// add their own extras.
type BuildSystem interface {
	// Use injects an installed dependency rooted at root into the
	// environment of later steps.
	Use(root string)

	// Lifecycle.
	Configure(ctx context.Context, sourceDir string) (*Config, error)
	Build(ctx context.Context, cfg *Config) error
	Install(ctx context.Context, cfg *Config) error
}

var libExts = map[string]bool{
	".so":    true,
	".lib":   true,
	".a":     true,
	".dylib": true,
	".bc":    true,
}

// CollectLibs returns the library names found directly in the lib
// directory of an install tree: "libfolly.a" and "folly.lib" both yield
// "folly". A missing lib directory yields no libraries.
func CollectLibs(installDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(installDir, "lib"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var libs []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !libExts[ext] {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if ext != ".lib" {
			name = strings.TrimPrefix(name, "lib")
		}
		if name != "" && !seen[name] {
			seen[name] = true
			libs = append(libs, name)
		}
	}
	return libs, nil
}
