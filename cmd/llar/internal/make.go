package internal

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/llar-folly/internal/build"
	"github.com/goplus/llar-folly/internal/env"
)

var (
	makeVerbose bool
	makeOutput  string
	makeKeep    bool
	makeDeps    []string
	makeProfile profileFlags
)

var makeCmd = &cobra.Command{
	Use:   "make [recipe@version]",
	Short: "Build and package a recipe",
	Long:  `Make fetches, patches, builds and packages a recipe in a fresh run directory, then prints the link libraries.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMake,
}

func init() {
	makeCmd.Flags().BoolVarP(&makeVerbose, "verbose", "v", false, "Enable verbose build output")
	makeCmd.Flags().StringVarP(&makeOutput, "output", "o", "", "Output path (directory or .zip file)")
	makeCmd.Flags().BoolVar(&makeKeep, "keep", false, "Keep the run directory after -o exported the package")
	makeCmd.Flags().StringArrayVar(&makeDeps, "dep", nil, "Install prefix of a resolved dependency, repeatable")
	makeProfile.register(makeCmd)
	rootCmd.AddCommand(makeCmd)
}

func runMake(cmd *cobra.Command, args []string) error {
	r, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}
	p, err := makeProfile.load(cmd, r)
	if err != nil {
		return err
	}

	// Resolve output path to absolute before build
	if makeOutput != "" {
		abs, err := filepath.Abs(makeOutput)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		makeOutput = abs
	}

	runDir, err := env.RunDir()
	if err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	if makeOutput != "" && !makeKeep {
		defer os.RemoveAll(runDir)
	}

	opts := build.Options{
		WorkDir:  runDir,
		Logger:   logger,
		DepRoots: makeDeps,
	}
	if makeVerbose {
		opts.Stdout = os.Stdout
		opts.Stderr = os.Stderr
	}

	res, err := build.NewBuilder(opts).Run(cmd.Context(), r, p.Settings, p.Options)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", r.Ref(), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(res.Libs, " "))
	if makeOutput != "" {
		if err := outputResult(res.Package.Dir, makeOutput); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("package written", "output", makeOutput)
	} else {
		logger.Info("package ready", "dir", res.Package.Dir)
	}
	return nil
}

// outputResult writes the build output to dest.
// If dest ends with ".zip", creates a zip archive; otherwise copies the directory.
func outputResult(srcDir, dest string) error {
	if strings.HasSuffix(dest, ".zip") {
		return zipDir(srcDir, dest)
	}
	return os.CopyFS(dest, os.DirFS(srcDir))
}

// zipDir creates a zip archive at dest from the contents of srcDir.
func zipDir(srcDir, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}
