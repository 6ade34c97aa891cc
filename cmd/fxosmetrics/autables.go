package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dzeber/fxos-metrics/internal/config"
	"github.com/dzeber/fxos-metrics/internal/datasets"
)

// buildAUDatasets runs the app-usage postprocessing: reconciled session,
// app, and search tables plus the dogfood summaries.
func buildAUDatasets(cfg config.Config, jobOutput, outDir string, save bool) error {
	out, err := readJobOutput(jobOutput)
	if err != nil {
		return err
	}

	tables, err := datasets.BuildAUTables(out, cfg.Job.OverlapToleranceMs)
	if err != nil {
		return err
	}

	files := []struct {
		name    string
		headers []string
		rows    [][]string
	}{
		{"au_info.csv", datasets.AUInfoHeaders, tables.Info},
		{"au_apps.csv", datasets.AUAppHeaders, tables.Apps},
		{"au_searches.csv", datasets.AUSearchHeaders, tables.Searches},
		{"au_info_multiple.csv", datasets.AUInfoHeaders, tables.Multiple},
		{"dogfood_details.csv", datasets.DogfoodDetailsHeaders, tables.DogfoodDetails},
		{"dogfood_apps.csv", datasets.DogfoodAppsHeaders, tables.DogfoodApps},
	}
	for _, file := range files {
		if err := datasets.WriteCSVFile(filepath.Join(outDir, file.name), file.headers, file.rows); err != nil {
			return err
		}
		fmt.Printf("%s: %d rows\n", file.name, len(file.rows))
	}

	cohorts := make([]string, 0, len(tables.Conditions))
	for cohort := range tables.Conditions {
		cohorts = append(cohorts, cohort)
	}
	sort.Strings(cohorts)
	for _, cohort := range cohorts {
		for name, n := range tables.Conditions[cohort] {
			fmt.Printf("%s %s: %d\n", cohort, name, n)
		}
	}

	if save {
		store, err := datasets.OpenStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.SaveConditions(context.Background(), "au-tables", tables.Conditions)
		if err != nil {
			return err
		}
		fmt.Printf("stored run %s\n", runID)
	}
	return nil
}

func newAUTablesCommand(cfg config.Config) *cobra.Command {
	var jobOutput, outDir string
	var save bool
	cmd := &cobra.Command{
		Use:   "au-tables",
		Short: "Build the reconciled app-usage tables from job output.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return buildAUDatasets(cfg, jobOutput, outDir, save)
		},
	}
	cmd.Flags().StringVar(&jobOutput, "job-output", "", "format-au output file")
	cmd.Flags().StringVar(&outDir, "out-dir", "datasets", "directory for CSV output")
	cmd.Flags().BoolVar(&save, "store", false, "also save condition counts to the metrics database")
	cmd.MarkFlagRequired("job-output")
	return cmd
}
