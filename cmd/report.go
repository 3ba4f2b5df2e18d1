package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepscout/deepscout/config"
	"github.com/deepscout/deepscout/storage"
)

var listSubReports bool

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Print the final report of a past session",
	Long: `Print the final report of a completed research session, optionally
listing the sub-reports its sub-agents produced.

Examples:
  deepscout report 20250101120000_ab12cd34
  deepscout report --sub-reports 20250101120000_ab12cd34`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&listSubReports, "sub-reports", false, "Also list sub-report artifacts")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.OpenSessionStore(cfg.Research.OutputDir, args[0])
	if err != nil {
		return err
	}
	report, err := store.ReadReport()
	if err != nil {
		return fmt.Errorf("session has no final report: %w", err)
	}
	fmt.Println(report)

	if listSubReports {
		subReports, err := store.SubReports()
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Printf("Sub-reports (%d):\n", len(subReports))
		for _, artifact := range subReports {
			fmt.Println(" -", artifact.Name)
		}
	}
	return nil
}
