package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url [recipe@version]",
	Short: "Print the source archive URL of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := lookupRecipe(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.ArchiveURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
}
