// Package module defines the module.Version type along with support code.
//
// A module.Version names a recipe dependency the way the package index
// does: "name/version" with an optional "@user/channel" suffix.
package module

import (
	"fmt"
	"path/filepath"
	"strings"
)

// A Version (for clients, a module.Version) represents a specific version
// of a package identified by its name, optionally published on a channel.
type Version struct {
	Path    string // Package name, e.g. "boost"
	Version string // Version string, e.g. "1.71.0"
	Channel string // Optional "user/channel", e.g. "conan/stable"
}

// String returns the reference form "path/version[@channel]".
func (v Version) String() string {
	s := v.Path + "/" + v.Version
	if v.Channel != "" {
		s += "@" + v.Channel
	}
	return s
}

// Parse parses a reference of the form "path/version" or
// "path/version@user/channel".
func Parse(ref string) (Version, error) {
	ref = strings.TrimSpace(ref)
	base, channel, hasChannel := strings.Cut(ref, "@")
	path, ver, ok := strings.Cut(base, "/")
	if !ok || path == "" || ver == "" || strings.Contains(ver, "/") {
		return Version{}, fmt.Errorf("malformed module reference %q: want path/version[@user/channel]", ref)
	}
	if hasChannel {
		user, ch, ok := strings.Cut(channel, "/")
		if !ok || user == "" || ch == "" || strings.Contains(ch, "/") {
			return Version{}, fmt.Errorf("malformed channel in module reference %q", ref)
		}
	}
	return Version{Path: path, Version: ver, Channel: channel}, nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// package-level recipe tables.
func MustParse(ref string) Version {
	v, err := Parse(ref)
	if err != nil {
		panic(err)
	}
	return v
}

// EscapePath returns the escaped form of the given module path as a valid
// file system path. It fails if the module path is invalid.
func EscapePath(path string) (escaped string, err error) {
	return filepath.Localize(path)
}
