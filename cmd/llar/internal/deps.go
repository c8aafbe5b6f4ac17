package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsProfile profileFlags

var depsCmd = &cobra.Command{
	Use:   "deps [recipe@version]",
	Short: "Print the requirements of a recipe",
	Long:  `Deps prints the requirements a recipe declares under the given settings, one per line, for the dependency resolver.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

func init() {
	depsProfile.register(depsCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	r, err := lookupRecipe(args[0])
	if err != nil {
		return err
	}
	p, err := depsProfile.load(cmd, r)
	if err != nil {
		return err
	}
	if err := r.ValidateEnvironment(p.Settings); err != nil {
		return err
	}
	for _, req := range r.DeclareRequirements(p.Settings) {
		fmt.Fprintln(cmd.OutOrStdout(), req)
	}
	return nil
}
