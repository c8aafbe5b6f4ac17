package build

import (
	"fmt"

	"github.com/goplus/llar-folly/formula"
)

// Stage is a step of the recipe lifecycle. Stages run strictly in
// declaration order.
type Stage int

const (
	StageConfigureOptions Stage = iota
	StageValidateEnvironment
	StageDeclareRequirements
	StageFetchSource
	StagePatchSource
	StageConfigureBuild
	StageBuild
	StagePackage
	StagePublishMetadata
)

var stageNames = [...]string{
	StageConfigureOptions:    "configure-options",
	StageValidateEnvironment: "validate-environment",
	StageDeclareRequirements: "declare-requirements",
	StageFetchSource:         "fetch-source",
	StagePatchSource:         "patch-source",
	StageConfigureBuild:      "configure-build",
	StageBuild:               "build",
	StagePackage:             "package",
	StagePublishMetadata:     "publish-metadata",
}

// Stages lists every stage in execution order.
func Stages() []Stage {
	stages := make([]Stage, len(stageNames))
	for i := range stages {
		stages[i] = Stage(i)
	}
	return stages
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// kind returns the error kind failures of the stage are reported as.
func (s Stage) kind() error {
	switch s {
	case StageValidateEnvironment:
		return formula.ErrUnsupportedToolchain
	case StageFetchSource:
		return formula.ErrFetch
	case StagePatchSource:
		return formula.ErrPatchApply
	case StageConfigureBuild:
		return formula.ErrConfigure
	case StageBuild:
		return formula.ErrBuild
	case StagePackage, StagePublishMetadata:
		return formula.ErrPackage
	}
	return nil
}

// StageError reports the stage a run failed at. It unwraps to both the
// error kind of the stage, such as formula.ErrBuild, and the underlying
// cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	if kind := e.Stage.kind(); kind != nil {
		return []error{kind, e.Err}
	}
	return []error{e.Err}
}

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
