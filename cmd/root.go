// Package cmd defines the deepscout CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepscout/deepscout/config"
)

var configDirFlag string

var rootCmd = &cobra.Command{
	Use:   "deepscout",
	Short: "Multi-agent deep research from the command line",
	Long: `deepscout runs multi-step web research: a lead agent plans and delegates,
sub-agents search and extract sources, and a citation pass adds sourcing
to the final report. Artifacts land under the configured output directory,
one folder per session.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configDirFlag != "" {
			config.SetConfigDir(configDirFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Override config directory (default ~/.deepscout)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
