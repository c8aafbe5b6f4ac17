// Package folly is the recipe for Facebook's folly C++ library.
package folly

import (
	"embed"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/pkgs/mod/module"
)

//go:embed patches/*.patch
var exports embed.FS

// PatchFile is the dependency lookup fix applied before configuring.
const PatchFile = "patches/folly-deps-fix.patch"

// New returns the folly 2019.11.11.00 recipe. Each call returns a fresh
// value that callers may modify.
func New() *formula.Recipe {
	return &formula.Recipe{
		Name:        "folly",
		Version:     "2019.11.11.00",
		Homepage:    "https://github.com/facebook/folly",
		License:     "Apache-2.0",
		Description: "An open-source C++ library developed and used at Facebook",

		SourceFolder: "sources",
		LicenseFile:  "LICENSE",

		Exports: exports,
		Patches: []formula.Patch{
			{Path: PatchFile, Strip: 0},
		},

		DefaultOptions: formula.Options{"shared": false, "fPIC": true},
		OptionPolicy: map[string][]string{
			formula.Windows: {"fPIC", "shared"},
			formula.Macos:   {"shared"},
		},
		Toolchains: map[formula.Toolchain]string{
			{OS: formula.Linux, Compiler: formula.Clang}:      "6.0",
			{OS: formula.Linux, Compiler: formula.GCC}:        "5",
			{OS: formula.Macos, Compiler: formula.AppleClang}: "8.0",
		},

		Requires: []module.Version{
			module.MustParse("boost/1.71.0"),
			module.MustParse("bzip2/1.0.8@conan/stable"),
			module.MustParse("libevent/2.1.11"),
			module.MustParse("double-conversion/3.1.5"),
			module.MustParse("glog/0.4.0"),
			module.MustParse("gflags/2.2.2"),
			module.MustParse("lz4/1.9.2"),
			module.MustParse("snappy/1.1.7"),
			module.MustParse("lzma/5.2.4@bincrafters/stable"),
			module.MustParse("zlib/1.2.11"),
			module.MustParse("zstd/1.4.3"),
			module.MustParse("openssl/1.1.1d"),
			module.MustParse("libunwind/1.3.1@bincrafters/stable"),
			module.MustParse("libelf/0.8.13"),
			module.MustParse("libdwarf/20190505@bincrafters/stable"),
			module.MustParse("libsodium/1.0.18@bincrafters/stable"),
		},
		ConditionalRequires: map[formula.Toolchain][]module.Version{
			{OS: formula.Linux, Compiler: formula.GCC}: {
				module.MustParse("libiberty/9.1.0@bincrafters/stable"),
			},
		},

		Libs: []string{"folly"},
		SystemLibs: map[string][]string{
			formula.Linux: {"pthread", "dl"},
		},
		ExtraLibs: []formula.LibRule{
			{
				Toolchain: formula.Toolchain{OS: formula.Linux, Compiler: formula.Clang},
				Version:   "6",
				Libcxx:    "libstdc++",
				Libs:      []string{"atomic"},
			},
			{
				Toolchain: formula.Toolchain{OS: formula.Macos, Compiler: formula.AppleClang},
				Version:   "9.0",
				Libcxx:    "libc++",
				Libs:      []string{"atomic"},
			},
		},
	}
}
