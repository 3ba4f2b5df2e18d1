// deepscout is a multi-agent deep-research CLI.
package main

import (
	"fmt"
	"os"

	"github.com/deepscout/deepscout/cmd"
	"github.com/deepscout/deepscout/config"
	"github.com/deepscout/deepscout/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := logger.Init(cfg.BuildLoggerConfig(), cfg.Research.OutputDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	cmd.Execute()
}
