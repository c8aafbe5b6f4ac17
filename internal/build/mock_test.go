package build

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/pkgs/buildsys"
	"github.com/goplus/llar-folly/pkgs/mod/module"
)

var errBoom = errors.New("boom")

// recorder collects the external calls a run makes, in order.
type recorder struct {
	calls []string
}

func (r *recorder) add(call string) {
	r.calls = append(r.calls, call)
}

// mockFetcher implements Fetcher without a network. Unzip creates the
// files in tree under dir.
type mockFetcher struct {
	rec     *recorder
	tree    map[string]string
	getErr  error
	unzipTo string // overrides the top-level directory in tree
}

func (m *mockFetcher) Get(ctx context.Context, url, dir string) (string, error) {
	m.rec.add("get " + url)
	if m.getErr != nil {
		return "", m.getErr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	archive := filepath.Join(dir, "archive.tar.gz")
	return archive, os.WriteFile(archive, []byte("archive"), 0o644)
}

func (m *mockFetcher) Unzip(archive, dir string) error {
	m.rec.add("unzip")
	for name, body := range m.tree {
		if m.unzipTo != "" {
			name = filepath.Join(m.unzipTo, filepath.Base(name))
		}
		target := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// mockBuildSystem implements buildsys.BuildSystem. Install drops
// installLibs into the lib directory of the install prefix.
type mockBuildSystem struct {
	rec         *recorder
	buildDir    string
	installDir  string
	settings    formula.Settings
	options     formula.Options
	used        []string
	failAt      string
	installLibs []string

	// blockManifest makes the manifest path a directory after install.
	blockManifest bool
}

var _ buildsys.BuildSystem = (*mockBuildSystem)(nil)

func (m *mockBuildSystem) Use(root string) {
	m.used = append(m.used, root)
}

func (m *mockBuildSystem) Configure(ctx context.Context, sourceDir string) (*buildsys.Config, error) {
	m.rec.add("configure")
	if m.failAt == "configure" {
		return nil, errBoom
	}
	return &buildsys.Config{SourceDir: sourceDir, BuildDir: m.buildDir, InstallDir: m.installDir}, nil
}

func (m *mockBuildSystem) Build(ctx context.Context, cfg *buildsys.Config) error {
	m.rec.add("build")
	if m.failAt == "build" {
		return errBoom
	}
	return nil
}

func (m *mockBuildSystem) Install(ctx context.Context, cfg *buildsys.Config) error {
	m.rec.add("install")
	if m.failAt == "install" {
		return errBoom
	}
	libDir := filepath.Join(cfg.InstallDir, "lib")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return err
	}
	for _, name := range m.installLibs {
		if err := os.WriteFile(filepath.Join(libDir, name), nil, 0o644); err != nil {
			return err
		}
	}
	if m.blockManifest {
		return os.MkdirAll(filepath.Join(cfg.InstallDir, ManifestFile), 0o755)
	}
	return nil
}

// factory returns a NewBuildSystemFunc that hands out bs and records the
// arguments it was created with.
func (m *mockBuildSystem) factory() NewBuildSystemFunc {
	return func(buildDir, installDir string, s formula.Settings, opts formula.Options, stdout, stderr io.Writer) buildsys.BuildSystem {
		m.rec.add("new")
		m.buildDir, m.installDir = buildDir, installDir
		m.settings, m.options = s, opts
		return m
	}
}

const demoPatch = `diff --git a/CMakeLists.txt b/CMakeLists.txt
--- a/CMakeLists.txt
+++ b/CMakeLists.txt
@@ -1,2 +1,2 @@
 project(demo)
-find_package(Foo)
+find_package(foo)
`

// demoRecipe is a small recipe in the shape of the folly one.
func demoRecipe() *formula.Recipe {
	return &formula.Recipe{
		Name:         "demo",
		Version:      "1.2.3",
		Homepage:     "https://example.com/demo",
		SourceFolder: "sources",
		LicenseFile:  "LICENSE",
		Exports: fstest.MapFS{
			"patches/fix.patch": {Data: []byte(demoPatch)},
		},
		Patches:        []formula.Patch{{Path: "patches/fix.patch"}},
		DefaultOptions: formula.Options{"shared": false, "fPIC": true},
		OptionPolicy: map[string][]string{
			formula.Windows: {"fPIC", "shared"},
		},
		Toolchains: map[formula.Toolchain]string{
			{OS: formula.Linux, Compiler: formula.GCC}: "5",
		},
		Requires:   []module.Version{module.MustParse("zlib/1.2.11")},
		Libs:       []string{"demo"},
		SystemLibs: map[string][]string{formula.Linux: {"pthread"}},
	}
}

// demoTree is the content of the demo release archive.
func demoTree() map[string]string {
	return map[string]string{
		"demo-1.2.3/CMakeLists.txt": "project(demo)\nfind_package(Foo)\n",
		"demo-1.2.3/LICENSE":        "demo license\n",
	}
}

func linuxGCC(ver string) formula.Settings {
	return formula.Settings{
		OS:        formula.Linux,
		Arch:      "x86_64",
		BuildType: "Release",
		Compiler:  formula.Compiler{Name: formula.GCC, Version: ver, Libcxx: "libstdc++11"},
	}
}
