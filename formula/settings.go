package formula

import (
	"runtime"
	"strings"
)

// Operating systems the recipe tables are keyed by.
const (
	Linux   = "Linux"
	Macos   = "Macos"
	Windows = "Windows"
)

// Compiler families the recipe tables are keyed by.
const (
	GCC        = "gcc"
	Clang      = "clang"
	AppleClang = "apple-clang"
	MSVC       = "Visual Studio"
)

// Settings is the platform and toolchain identity a recipe is built
// under. It is supplied before the first stage and never changes.
type Settings struct {
	OS        string   `json:"os" mapstructure:"os" validate:"required"`
	Arch      string   `json:"arch" mapstructure:"arch" validate:"required"`
	BuildType string   `json:"build_type" mapstructure:"build_type" validate:"required,oneof=Debug Release RelWithDebInfo MinSizeRel"`
	Compiler  Compiler `json:"compiler" mapstructure:"compiler"`
}

// Compiler identifies the C++ toolchain.
type Compiler struct {
	Name    string `json:"name" mapstructure:"name" validate:"required"`
	Version string `json:"version" mapstructure:"version" validate:"required"`
	Libcxx  string `json:"libcxx,omitempty" mapstructure:"libcxx"`
}

// Toolchain is the (os, compiler family) pair policy tables are keyed by.
type Toolchain struct {
	OS       string
	Compiler string
}

func (t Toolchain) String() string {
	return t.OS + "/" + t.Compiler
}

// Toolchain returns the (os, compiler) key of s.
func (s Settings) Toolchain() Toolchain {
	return Toolchain{OS: s.OS, Compiler: s.Compiler.Name}
}

// HostSettings returns Settings describing the running host with a
// Release build and the given compiler.
func HostSettings(compiler Compiler) Settings {
	return Settings{
		OS:        HostOS(runtime.GOOS),
		Arch:      HostArch(runtime.GOARCH),
		BuildType: "Release",
		Compiler:  compiler,
	}
}

// HostOS maps a GOOS value to the OS name used in recipe tables.
func HostOS(goos string) string {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return Macos
	case "windows":
		return Windows
	case "freebsd":
		return "FreeBSD"
	}
	return goos
}

// HostArch maps a GOARCH value to the architecture name used in recipe
// tables.
func HostArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "armv8"
	case "arm":
		return "armv7"
	}
	return strings.ToLower(goarch)
}
