package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/llar-folly/formula"
)

// ManifestFile is written to the package directory at the end of the
// package stage. Nothing reads it to skip work; it describes the package for
// consumers.
const ManifestFile = ".package.json"

// Manifest describes a published package.
type Manifest struct {
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	Matrix       string           `json:"matrix"`
	Settings     formula.Settings `json:"settings"`
	Options      formula.Options  `json:"options"`
	Requires     []string         `json:"requires"`
	Libs         []string         `json:"libs"`
	LicenseFiles []string         `json:"license_files,omitempty"`
	BuildTime    time.Time        `json:"build_time"`
}

func newManifest(res *Result, libs []string, now time.Time) *Manifest {
	m := &Manifest{
		Name:         res.Ref.Path,
		Version:      res.Ref.Version,
		Matrix:       res.Matrix,
		Settings:     res.Settings,
		Options:      res.Options,
		Libs:         libs,
		LicenseFiles: res.Package.LicenseFiles,
		BuildTime:    now,
	}
	for _, req := range res.Requires {
		m.Requires = append(m.Requires, req.String())
	}
	return m
}

// LoadManifest reads the manifest of the package installed at dir.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func saveManifest(dir string, m *Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}
