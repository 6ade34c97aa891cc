package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dzeber/fxos-metrics/internal/config"
	"github.com/dzeber/fxos-metrics/internal/datasets"
	"github.com/dzeber/fxos-metrics/internal/format"
	"github.com/dzeber/fxos-metrics/internal/lookup"
	"github.com/dzeber/fxos-metrics/internal/mapred"
)

func readJobOutput(path string) (*mapred.Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening job output: %w", err)
	}
	defer f.Close()
	return mapred.ParseOutput(f)
}

// buildDashboardDatasets runs the FTU postprocessing: dashboard and dump
// CSVs, optional spreadsheet, optional store save.
func buildDashboardDatasets(cfg config.Config, jobOutput, outDir, xlsxPath string, save bool) error {
	out, err := readJobOutput(jobOutput)
	if err != nil {
		return err
	}

	validOS, err := format.CompileValidOS(cfg.Job.ValidOSPattern)
	if err != nil {
		return fmt.Errorf("compiling valid_os_pattern: %w", err)
	}
	tables := lookup.Open(cfg.LookupDir)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	dashWindow := datasets.WindowEnding(yesterday, cfg.Datasets.DashboardDays)
	dumpWindow := datasets.WindowEnding(yesterday, cfg.Datasets.DumpDays)

	dashboard, err := datasets.BuildDashboard(out, tables, validOS, dashWindow)
	if err != nil {
		return err
	}
	if err := tables.Err(); err != nil {
		return err
	}
	dump, err := datasets.BuildDump(out, dumpWindow)
	if err != nil {
		return err
	}

	if err := datasets.WriteCSVFile(filepath.Join(outDir, "ftu_dashboard.csv"),
		datasets.DashboardHeaders, datasets.DashboardCSVRows(dashboard)); err != nil {
		return err
	}
	if err := datasets.WriteCSVFile(filepath.Join(outDir, "ftu_dump.csv"),
		datasets.DumpHeaders, dump); err != nil {
		return err
	}
	fmt.Printf("dashboard: %d rows, dump: %d rows\n", len(dashboard), len(dump))

	if xlsxPath != "" {
		if err := datasets.ExportDashboardXLSX(xlsxPath, dashboard); err != nil {
			return err
		}
		log.Printf("wrote spreadsheet %s", xlsxPath)
	}

	if save {
		store, err := datasets.OpenStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.SaveDashboard(context.Background(), dashboard)
		if err != nil {
			return err
		}
		fmt.Printf("stored dashboard run %s\n", runID)
	}
	return nil
}

func newDashboardCommand(cfg config.Config) *cobra.Command {
	var jobOutput, outDir, xlsxPath string
	var save bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Build the FTU dashboard and dump datasets from job output.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return buildDashboardDatasets(cfg, jobOutput, outDir, xlsxPath, save)
		},
	}
	cmd.Flags().StringVar(&jobOutput, "job-output", "", "format-ftu output file")
	cmd.Flags().StringVar(&outDir, "out-dir", "datasets", "directory for CSV output")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export the dashboard as a spreadsheet")
	cmd.Flags().BoolVar(&save, "store", false, "also save the dashboard to the metrics database")
	cmd.MarkFlagRequired("job-output")
	return cmd
}
