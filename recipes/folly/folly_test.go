package folly

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/internal/patch"
)

func settings(os, compiler, ver, libcxx string) formula.Settings {
	return formula.Settings{
		OS:        os,
		Arch:      "x86_64",
		BuildType: "Release",
		Compiler:  formula.Compiler{Name: compiler, Version: ver, Libcxx: libcxx},
	}
}

func TestConfigureOptions(t *testing.T) {
	r := New()
	in := formula.Options{"shared": true, "fPIC": false}
	tests := []struct {
		os   string
		want formula.Options
	}{
		{formula.Linux, formula.Options{"shared": true, "fPIC": false}},
		{formula.Macos, formula.Options{"fPIC": false}},
		{formula.Windows, formula.Options{}},
		{"FreeBSD", formula.Options{"shared": true, "fPIC": false}},
	}
	for _, tt := range tests {
		got := r.ConfigureOptions(settings(tt.os, formula.GCC, "9", ""), in)
		if got.String() != tt.want.String() {
			t.Errorf("ConfigureOptions(%s) = %v, want %v", tt.os, got, tt.want)
		}
	}
	if len(in) != 2 {
		t.Errorf("ConfigureOptions mutated its input: %v", in)
	}
}

func TestDefaultOptions(t *testing.T) {
	r := New()
	if got := r.DefaultOptions.String(); got != "fPIC=true shared=false" {
		t.Errorf("DefaultOptions = %q", got)
	}
}

func TestValidateEnvironment(t *testing.T) {
	r := New()
	tests := []struct {
		s  formula.Settings
		ok bool
	}{
		{settings(formula.Linux, formula.Clang, "5.0", ""), false},
		{settings(formula.Linux, formula.Clang, "6.0", ""), true},
		{settings(formula.Linux, formula.Clang, "6", ""), true},
		{settings(formula.Linux, formula.GCC, "4.9", ""), false},
		{settings(formula.Linux, formula.GCC, "5", ""), true},
		{settings(formula.Linux, formula.GCC, "7", "libstdc++11"), true},
		{settings(formula.Macos, formula.AppleClang, "7.3", ""), false},
		{settings(formula.Macos, formula.AppleClang, "8.0", ""), true},
		{settings(formula.Macos, formula.Clang, "3.0", ""), true},
		{settings(formula.Windows, formula.MSVC, "14", ""), true},
		{settings(formula.Linux, formula.GCC, "latest", ""), false},
	}
	for _, tt := range tests {
		err := r.ValidateEnvironment(tt.s)
		if tt.ok && err != nil {
			t.Errorf("ValidateEnvironment(%v %s) = %v, want nil", tt.s.Toolchain(), tt.s.Compiler.Version, err)
		}
		if !tt.ok && !errors.Is(err, formula.ErrUnsupportedToolchain) {
			t.Errorf("ValidateEnvironment(%v %s) = %v, want ErrUnsupportedToolchain", tt.s.Toolchain(), tt.s.Compiler.Version, err)
		}
	}
}

func TestDeclareRequirements(t *testing.T) {
	r := New()

	clang := r.DeclareRequirements(settings(formula.Linux, formula.Clang, "9", ""))
	if len(clang) != 16 {
		t.Fatalf("Linux/clang requirements = %d, want 16", len(clang))
	}
	if clang[0].String() != "boost/1.71.0" || clang[15].String() != "libsodium/1.0.18@bincrafters/stable" {
		t.Errorf("unexpected requirement order: %v", clang)
	}

	gcc := r.DeclareRequirements(settings(formula.Linux, formula.GCC, "9", ""))
	if len(gcc) != 17 {
		t.Fatalf("Linux/gcc requirements = %d, want 17", len(gcc))
	}
	if got := gcc[16].String(); got != "libiberty/9.1.0@bincrafters/stable" {
		t.Errorf("conditional requirement = %s", got)
	}
	if !slices.Equal(gcc[:16], clang) {
		t.Error("base requirements differ between toolchains")
	}

	mac := r.DeclareRequirements(settings(formula.Macos, formula.GCC, "9", ""))
	if len(mac) != 16 {
		t.Errorf("Macos/gcc requirements = %d, want 16", len(mac))
	}
}

func TestArchiveURL(t *testing.T) {
	r := New()
	want := "https://github.com/facebook/folly/archive/v2019.11.11.00.tar.gz"
	if got := r.ArchiveURL(); got != want {
		t.Errorf("ArchiveURL() = %q, want %q", got, want)
	}
	if got := r.ExtractedDir(); got != "folly-2019.11.11.00" {
		t.Errorf("ExtractedDir() = %q", got)
	}
}

func TestOutputLibraries(t *testing.T) {
	r := New()
	tests := []struct {
		s    formula.Settings
		want []string
	}{
		{settings(formula.Linux, formula.GCC, "7", "libstdc++11"), []string{"folly", "pthread", "dl"}},
		{settings(formula.Linux, formula.Clang, "6", "libstdc++"), []string{"folly", "pthread", "dl", "atomic"}},
		{settings(formula.Linux, formula.Clang, "6.0", "libstdc++"), []string{"folly", "pthread", "dl", "atomic"}},
		{settings(formula.Linux, formula.Clang, "6", "libc++"), []string{"folly", "pthread", "dl"}},
		{settings(formula.Linux, formula.Clang, "7", "libstdc++"), []string{"folly", "pthread", "dl"}},
		{settings(formula.Macos, formula.AppleClang, "9.0", "libc++"), []string{"folly", "atomic"}},
		{settings(formula.Macos, formula.AppleClang, "10.0", "libc++"), []string{"folly"}},
		{settings(formula.Windows, formula.MSVC, "16", ""), []string{"folly"}},
	}
	for _, tt := range tests {
		got := r.OutputLibraries([]string{"folly"}, tt.s)
		if !slices.Equal(got, tt.want) {
			t.Errorf("OutputLibraries(%v %s %s) = %v, want %v",
				tt.s.Toolchain(), tt.s.Compiler.Version, tt.s.Compiler.Libcxx, got, tt.want)
		}
	}
}

func TestOutputLibrariesEmptyInstall(t *testing.T) {
	r := New()
	got := r.OutputLibraries(nil, settings(formula.Linux, formula.GCC, "7", ""))
	if want := []string{"folly", "pthread", "dl"}; !slices.Equal(got, want) {
		t.Errorf("OutputLibraries(nil) = %v, want %v", got, want)
	}
}

func TestExports(t *testing.T) {
	r := New()
	for _, p := range r.Patches {
		if _, err := fs.Stat(r.Exports, p.Path); err != nil {
			t.Errorf("patch %s not exported: %v", p.Path, err)
		}
	}
}

func TestPatchApplies(t *testing.T) {
	src, err := os.ReadFile("testdata/folly-deps.cmake")
	if err != nil {
		t.Fatal(err)
	}
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "CMake"), 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(base, "CMake", "folly-deps.cmake")
	if err := os.WriteFile(target, src, 0o644); err != nil {
		t.Fatal(err)
	}

	p := New().Patches[0]
	if err := patch.Apply(base, p.Path, p.Strip); err != nil {
		t.Fatalf("patch.Apply() error = %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) == string(src) {
		t.Fatal("patch left the file unchanged")
	}

	// a second application must not succeed silently
	if err := patch.Apply(base, p.Path, p.Strip); err == nil {
		t.Error("second patch.Apply() error = nil")
	}
}
