package formula

import "errors"

// Error kinds reported by recipe stages. Stage failures wrap exactly one
// of them; use errors.Is to classify.
var (
	ErrUnsupportedToolchain = errors.New("unsupported toolchain")
	ErrFetch                = errors.New("fetch source failed")
	ErrPatchApply           = errors.New("patch does not apply")
	ErrConfigure            = errors.New("configure failed")
	ErrBuild                = errors.New("build failed")
	ErrPackage              = errors.New("package failed")
)
