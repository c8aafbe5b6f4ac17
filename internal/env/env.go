// Package env locates the directories llar works in.
package env

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// WorkspaceEnv overrides the workspace directory.
const WorkspaceEnv = "LLAR_WORKSPACE"

// WorkDir returns the workspace directory, creating it if needed. Its
// layout:
//
//	workspace/
//	  runs/
//	    <uuid>/      # working directory of one run
//
// It defaults to:
//
//	Linux:   $XDG_CACHE_HOME/llar
//	macOS:   ~/Library/Caches/llar
func WorkDir() (string, error) {
	dir := os.Getenv(WorkspaceEnv)
	if dir == "" {
		dir = filepath.Join(xdg.CacheHome, "llar")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// RunDir creates a fresh working directory for one run under the
// workspace and returns it.
func RunDir() (string, error) {
	ws, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(ws, "runs", uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
