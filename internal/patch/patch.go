// Copyright 2024 The llar Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch applies unified and git-style diffs to a source tree.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	securejoin "github.com/cyphar/filepath-securejoin"
)

// ErrNoChanges is returned for a patch file that holds no file diffs.
var ErrNoChanges = errors.New("patch contains no changes")

// result is the outcome of applying one file diff, held in memory until
// every diff in the patch has applied.
type result struct {
	path    string // written, unless remove is set
	data    []byte
	mode    fs.FileMode
	remove  string // removed after writes; old name of deletes and renames
	deleted bool
}

// Apply applies patchFile to the files under baseDir.
//
// strip drops leading path components from the names in the patch, like
// patch -p. Git-style diffs ("diff --git a/x b/x") already have their
// a/ and b/ prefixes removed; traditional diffs keep them.
//
// Either every file in the patch applies or none is modified. A hunk whose
// context does not match fails the whole patch.
func Apply(baseDir, patchFile string, strip int) error {
	data, err := os.ReadFile(patchFile)
	if err != nil {
		return err
	}
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(patchFile), err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", filepath.Base(patchFile), ErrNoChanges)
	}

	results := make([]result, 0, len(files))
	for _, f := range files {
		r, err := applyFile(baseDir, f, strip)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(patchFile), err)
		}
		results = append(results, r)
	}

	for _, r := range results {
		if r.deleted {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(r.path, r.data, r.mode); err != nil {
			return err
		}
	}
	for _, r := range results {
		if r.remove != "" {
			if err := os.Remove(r.remove); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyFile(baseDir string, f *gitdiff.File, strip int) (result, error) {
	var r result
	oldPath, err := resolve(baseDir, f.OldName, strip, !f.IsNew)
	if err != nil {
		return r, err
	}
	newPath, err := resolve(baseDir, f.NewName, strip, !f.IsDelete)
	if err != nil {
		return r, err
	}

	var src []byte
	r.mode = 0o644
	if !f.IsNew {
		info, err := os.Stat(oldPath)
		if err != nil {
			return r, err
		}
		r.mode = info.Mode().Perm()
		if src, err = os.ReadFile(oldPath); err != nil {
			return r, err
		}
	} else if f.NewMode != 0 {
		r.mode = f.NewMode.Perm()
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, bytes.NewReader(src), f); err != nil {
		return r, fmt.Errorf("%s: %w", displayName(f), err)
	}

	switch {
	case f.IsDelete:
		r.deleted = true
		r.remove = oldPath
	case f.IsRename || f.IsCopy:
		r.path, r.data = newPath, out.Bytes()
		if f.IsRename {
			r.remove = oldPath
		}
	default:
		r.path, r.data = oldPath, out.Bytes()
		if f.IsNew {
			r.path = newPath
		}
	}
	return r, nil
}

// resolve maps a patch file name to a path confined to baseDir.
func resolve(baseDir, name string, strip int, required bool) (string, error) {
	if name == "" {
		if required {
			return "", errors.New("file diff without a file name")
		}
		return "", nil
	}
	parts := strings.Split(filepath.ToSlash(name), "/")
	if len(parts) <= strip {
		return "", fmt.Errorf("cannot strip %d components from %q", strip, name)
	}
	return securejoin.SecureJoin(baseDir, strings.Join(parts[strip:], "/"))
}

func displayName(f *gitdiff.File) string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}
