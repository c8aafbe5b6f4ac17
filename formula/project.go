package formula

import (
	"io"
	"io/fs"
)

// -----------------------------------------------------------------------------

// SourceTree is the source checkout a run works on.
type SourceTree struct {
	Root string // working directory of the run
	Dir  string // canonical source folder under Root
	FS   fs.FS  // view of Dir
}

// ReadFile reads the content of a file in the source folder.
func (t *SourceTree) ReadFile(path string) ([]byte, error) {
	file, err := t.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// -----------------------------------------------------------------------------

// PackageOutput is the installed package.
type PackageOutput struct {
	Dir          string   // install prefix
	LicenseFiles []string // relative to Dir
	Libs         []string // libraries found in the install tree
}

// -----------------------------------------------------------------------------
