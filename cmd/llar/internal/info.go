package internal

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goplus/llar-folly/formula"
)

var infoProfile profileFlags

var infoCmd = &cobra.Command{
	Use:   "info [recipe@version]",
	Short: "Describe a recipe under the given settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoProfile.register(infoCmd)
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	r, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}
	p, err := infoProfile.load(cmd, r)
	if err != nil {
		return err
	}
	printInfo(cmd.OutOrStdout(), r, p.Settings, p.Options)
	return nil
}

func printInfo(w io.Writer, r *formula.Recipe, s formula.Settings, requested formula.Options) {
	opts := r.ConfigureOptions(s, requested)
	matrix := formula.MatrixOf(s, opts)

	fmt.Fprintf(w, "recipe:      %s\n", r.Ref())
	fmt.Fprintf(w, "description: %s\n", r.Description)
	fmt.Fprintf(w, "homepage:    %s\n", r.Homepage)
	fmt.Fprintf(w, "license:     %s\n", r.License)
	fmt.Fprintf(w, "source:      %s\n", r.ArchiveURL())
	fmt.Fprintf(w, "toolchain:   %s %s\n", s.Toolchain(), s.Compiler.Version)
	if err := r.ValidateEnvironment(s); err != nil {
		fmt.Fprintf(w, "supported:   no (%v)\n", err)
	} else {
		fmt.Fprintf(w, "supported:   yes\n")
	}
	fmt.Fprintf(w, "options:     %s\n", opts)
	fmt.Fprintf(w, "matrix:      %s\n", matrix.String())
	fmt.Fprintf(w, "requires:    %d\n", len(r.DeclareRequirements(s)))
	fmt.Fprintf(w, "libs:        %v\n", r.OutputLibraries(nil, s))
}
