package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dzeber/fxos-metrics/internal/config"
	"github.com/dzeber/fxos-metrics/internal/version"
)

func main() {
	if os.Getenv("FXOSMETRICS_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:     "fxosmetrics",
		Short:   "fxosmetrics runs the FxOS telemetry counting jobs and builds their published datasets.",
		Version: version.String(),
	}

	root.AddCommand(
		newFormatFTUCommand(cfg),
		newFormatAUCommand(cfg),
		newActivationsCommand(cfg),
		newDashboardCommand(cfg),
		newAUTablesCommand(cfg),
		newWatchCommand(cfg),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
