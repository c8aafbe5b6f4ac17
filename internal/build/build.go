// Package build runs a recipe through its lifecycle stages.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/goplus/llar-folly/formula"
	"github.com/goplus/llar-folly/internal/fetch"
	"github.com/goplus/llar-folly/internal/patch"
	"github.com/goplus/llar-folly/pkgs/buildsys"
	"github.com/goplus/llar-folly/pkgs/buildsys/cmake"
	"github.com/goplus/llar-folly/pkgs/mod/module"
)

// Run directory layout:
//
//	workDir/
//	  patches/            # recipe exports
//	  download/           # release archive
//	  <sources>/          # extracted and patched source folder
//	  build/              # build tree
//	  package/
//	    <name>@<version>/ # install prefix
//	      licenses/
//	      .package.json
const (
	downloadDir = "download"
	buildDir    = "build"
	packageDir  = "package"
	licensesDir = "licenses"
)

// Fetcher downloads and unpacks source archives.
type Fetcher interface {
	Get(ctx context.Context, url, dir string) (archive string, err error)
	Unzip(archive, dir string) error
}

// PatchFunc applies patchFile to the tree under baseDir.
type PatchFunc func(baseDir, patchFile string, strip int) error

// NewBuildSystemFunc returns the build tool for one run.
type NewBuildSystemFunc func(buildDir, installDir string, s formula.Settings, opts formula.Options, stdout, stderr io.Writer) buildsys.BuildSystem

// Options configures a Builder. Only WorkDir is required.
type Options struct {
	// WorkDir is the working directory of the run. Runs must not share it.
	WorkDir string

	Logger         *log.Logger
	Fetcher        Fetcher
	Patch          PatchFunc
	NewBuildSystem NewBuildSystemFunc

	// Stdout and Stderr receive build tool output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// DepRoots are install prefixes of resolved dependencies.
	DepRoots []string
}

// Builder executes recipes.
type Builder struct {
	opts Options
	log  *log.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Ref      module.Version
	Settings formula.Settings
	Options  formula.Options
	Matrix   string
	Requires []module.Version
	Source   *formula.SourceTree
	Package  *formula.PackageOutput
	Libs     []string // output libraries for consumers
}

// NewBuilder returns a Builder with defaults filled in for the options
// left unset.
func NewBuilder(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New()
	}
	if opts.Patch == nil {
		opts.Patch = patch.Apply
	}
	if opts.NewBuildSystem == nil {
		opts.NewBuildSystem = newCMake
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Builder{opts: opts, log: opts.Logger}
}

func newCMake(buildDir, installDir string, s formula.Settings, opts formula.Options, stdout, stderr io.Writer) buildsys.BuildSystem {
	return cmake.New(buildDir, installDir).Settings(s, opts).Output(stdout, stderr)
}

// Run executes every stage of r in order under settings s and the
// requested options. The first failing stage aborts the run with a
// *StageError; nothing is retried. Stages before fetch-source have no
// side effects, so an unsupported toolchain leaves WorkDir untouched.
func (b *Builder) Run(ctx context.Context, r *formula.Recipe, s formula.Settings, requested formula.Options) (*Result, error) {
	if b.opts.WorkDir == "" {
		return nil, errors.New("build: no working directory")
	}
	ref := r.Ref()
	logger := b.log.With("recipe", ref.String())

	res := &Result{Ref: ref, Settings: s}

	res.Options = r.ConfigureOptions(s, requested)
	logger.Debug("stage done", "stage", StageConfigureOptions, "options", res.Options.String())

	if err := r.ValidateEnvironment(s); err != nil {
		logger.Error("stage failed", "stage", StageValidateEnvironment, "err", err)
		return nil, stageError(StageValidateEnvironment, err)
	}
	logger.Debug("stage done", "stage", StageValidateEnvironment, "toolchain", s.Toolchain(), "version", s.Compiler.Version)

	res.Requires = r.DeclareRequirements(s)
	logger.Debug("stage done", "stage", StageDeclareRequirements, "count", len(res.Requires))

	matrix := formula.MatrixOf(s, res.Options)
	res.Matrix = matrix.String()

	stages := []struct {
		stage Stage
		run   func(ctx context.Context, st *runState) error
	}{
		{StageFetchSource, b.fetchSource},
		{StagePatchSource, b.patchSource},
		{StageConfigureBuild, b.configureBuild},
		{StageBuild, b.build},
		{StagePackage, b.pack},
		{StagePublishMetadata, b.publish},
	}
	st := &runState{recipe: r, result: res, log: logger}
	for _, step := range stages {
		logger.Info("running", "stage", step.stage)
		if err := step.run(ctx, st); err != nil {
			logger.Error("stage failed", "stage", step.stage, "err", err)
			return nil, stageError(step.stage, err)
		}
	}
	logger.Info("published", "dir", res.Package.Dir, "libs", res.Libs)
	return res, nil
}

// runState carries values between the side-effecting stages.
type runState struct {
	log        *log.Logger
	recipe     *formula.Recipe
	result     *Result
	installDir string
	bs         buildsys.BuildSystem
	config     *buildsys.Config
}

func (b *Builder) path(elem ...string) string {
	return filepath.Join(append([]string{b.opts.WorkDir}, elem...)...)
}

func (b *Builder) fetchSource(ctx context.Context, st *runState) error {
	r := st.recipe
	if r.SourceFolder == "" {
		return errors.New("recipe has no source folder")
	}
	sourceDir := b.path(r.SourceFolder)
	if _, err := os.Lstat(sourceDir); err == nil {
		return fmt.Errorf("source folder %s already exists", sourceDir)
	}

	url := r.ArchiveURL()
	st.log.Info("downloading", "url", url)
	archive, err := b.opts.Fetcher.Get(ctx, url, b.path(downloadDir))
	if err != nil {
		return err
	}
	if err := fetch.Verify(archive, r.SourceDigest); err != nil {
		return err
	}
	if err := b.opts.Fetcher.Unzip(archive, b.opts.WorkDir); err != nil {
		return err
	}
	if err := os.Rename(b.path(r.ExtractedDir()), sourceDir); err != nil {
		return fmt.Errorf("archive did not unpack to %s: %w", r.ExtractedDir(), err)
	}
	st.result.Source = &formula.SourceTree{
		Root: b.opts.WorkDir,
		Dir:  sourceDir,
		FS:   os.DirFS(sourceDir),
	}
	return nil
}

func (b *Builder) patchSource(ctx context.Context, st *runState) error {
	r := st.recipe
	if len(r.Patches) == 0 {
		return nil
	}
	if r.Exports == nil {
		return errors.New("recipe patches without exports")
	}
	if err := os.CopyFS(b.opts.WorkDir, r.Exports); err != nil {
		return err
	}
	for _, p := range r.Patches {
		st.log.Info("patching", "patch", p.Path, "dir", st.result.Source.Dir)
		if err := b.opts.Patch(st.result.Source.Dir, b.path(p.Path), p.Strip); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) configureBuild(ctx context.Context, st *runState) error {
	res := st.result
	escaped, err := module.EscapePath(res.Ref.Path)
	if err != nil {
		return err
	}
	st.installDir = b.path(packageDir, escaped+"@"+res.Ref.Version)
	st.bs = b.opts.NewBuildSystem(b.path(buildDir), st.installDir, res.Settings, res.Options, b.opts.Stdout, b.opts.Stderr)
	for _, root := range b.opts.DepRoots {
		st.bs.Use(root)
	}
	config, err := st.bs.Configure(ctx, res.Source.Dir)
	if err != nil {
		return err
	}
	st.config = config
	return nil
}

func (b *Builder) build(ctx context.Context, st *runState) error {
	return st.bs.Build(ctx, st.config)
}

func (b *Builder) pack(ctx context.Context, st *runState) error {
	r := st.recipe
	out := &formula.PackageOutput{Dir: st.installDir}
	if r.LicenseFile != "" {
		license := filepath.Join(licensesDir, filepath.Base(r.LicenseFile))
		if err := copyFile(filepath.Join(st.result.Source.Dir, r.LicenseFile), filepath.Join(out.Dir, license)); err != nil {
			return fmt.Errorf("copy license: %w", err)
		}
		out.LicenseFiles = append(out.LicenseFiles, license)
	}
	if err := st.bs.Install(ctx, st.config); err != nil {
		return err
	}
	libs, err := buildsys.CollectLibs(out.Dir)
	if err != nil {
		return err
	}
	out.Libs = libs
	st.result.Package = out

	published := r.OutputLibraries(out.Libs, st.result.Settings)
	return saveManifest(out.Dir, newManifest(st.result, published, time.Now()))
}

// publish computes the output libraries. It cannot fail.
func (b *Builder) publish(ctx context.Context, st *runState) error {
	res := st.result
	res.Libs = st.recipe.OutputLibraries(res.Package.Libs, res.Settings)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
