package internal

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	debug  bool
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "llar"})
)

var rootCmd = &cobra.Command{
	Use:   "llar",
	Short: "llar builds C/C++ libraries from recipes",
	Long:  `llar fetches, patches, builds and packages C/C++ libraries described by recipes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Fatal(err)
	}
}
