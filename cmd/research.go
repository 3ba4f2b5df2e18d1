package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepscout/deepscout/config"
	"github.com/deepscout/deepscout/research"
)

var sessionIDFlag string

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Run a full research session for a query",
	Long: `Run the research pipeline for a query: the lead agent plans, delegates
to sub-agents, and writes a final report, which the citation editor then
revises with sourcing.

Examples:
  deepscout research "What changed in EU AI regulation this year?"
  deepscout research --session 20250101120000_ab12cd34 "follow-up query"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)
	researchCmd.Flags().StringVar(&sessionIDFlag, "session", "", "Reuse an explicit session id instead of generating one")
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("no Tavily API key configured; set TAVILY_API_KEY or search.apiKey in config")
	}

	orch, err := research.NewOrchestrator(cfg, sessionIDFlag)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	sessionID, err := orch.Run(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("research session %s: %w", sessionID, err)
	}

	fmt.Println("Session:", sessionID)
	if report, err := orch.Store().ReadReport(); err == nil {
		fmt.Println()
		fmt.Println(report)
	} else {
		fmt.Println("No final report was produced; see", orch.Store().Root())
	}
	return nil
}
