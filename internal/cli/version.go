package cmd

import (
	"fmt"

	"github.com/rohmanhakim/lazyload/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lazyload %s (engine %s, built %s)\n",
			build.FullVersion(), build.EngineVersion, build.BuildTime)
	},
}
