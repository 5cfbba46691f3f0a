package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridkit/pkg/settings"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gridkit version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := settings.VersionInformation
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s, %s)\n",
			settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
