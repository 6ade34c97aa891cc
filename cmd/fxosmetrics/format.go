package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dzeber/fxos-metrics/internal/config"
	"github.com/dzeber/fxos-metrics/internal/format"
	"github.com/dzeber/fxos-metrics/internal/jobs"
	"github.com/dzeber/fxos-metrics/internal/lookup"
	"github.com/dzeber/fxos-metrics/internal/mapred"
	"github.com/dzeber/fxos-metrics/internal/payload"
)

// buildShaper assembles the payload shaper from the configured reference
// tables and job constants.
func buildShaper(cfg config.Config) (*payload.Shaper, error) {
	validOS, err := format.CompileValidOS(cfg.Job.ValidOSPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling valid_os_pattern: %w", err)
	}
	earliest, err := cfg.EarliestPing()
	if err != nil {
		return nil, err
	}
	dogfood, err := cfg.DogfoodRegexp()
	if err != nil {
		return nil, err
	}
	return &payload.Shaper{
		Tables:           lookup.Open(cfg.LookupDir),
		ValidOS:          validOS,
		EarliestPingDate: earliest,
		Dogfood:          dogfood,
	}, nil
}

// runFormatJob streams a dump through the mapper and writes merged counts to
// the output file.
func runFormatJob(cfg config.Config, inputPath, outputPath string, build func(*payload.Shaper) mapred.Mapper) error {
	shaper, err := buildShaper(cfg)
	if err != nil {
		return err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	agg, err := mapred.Run(context.Background(), in, cfg.Job.Workers, build(shaper))
	if err != nil {
		return err
	}
	log.Printf("job produced %d distinct keys", agg.Len())

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if _, err := agg.WriteTo(out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	printJobSummary(outputPath)
	return nil
}

// printJobSummary reparses the written output and prints its bookkeeping
// rows for the run log.
func printJobSummary(outputPath string) {
	f, err := os.Open(outputPath)
	if err != nil {
		return
	}
	defer f.Close()

	out, err := mapred.ParseOutput(f)
	if err != nil {
		return
	}
	fmt.Printf("%d data keys written\n", len(out.Rows))

	conditions := make([]string, 0, len(out.Conditions))
	for name := range out.Conditions {
		conditions = append(conditions, name)
	}
	sort.Strings(conditions)
	for _, name := range conditions {
		fmt.Printf("condition %q: %d\n", name, out.Conditions[name])
	}
	for group, counters := range out.Counters {
		for name, n := range counters {
			if group == "" {
				fmt.Printf("counter %s: %d\n", name, n)
			} else {
				fmt.Printf("counter %s/%s: %d\n", group, name, n)
			}
		}
	}
}

func newFormatFTUCommand(cfg config.Config) *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "format-ftu",
		Short: "Shape and count first-time-use pings from a telemetry dump.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFormatJob(cfg, inputPath, outputPath, jobs.FTUMapper)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "telemetry dump to read (NDJSON)")
	cmd.Flags().StringVar(&outputPath, "output", "ftu_counts.out", "job output file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newFormatAUCommand(cfg config.Config) *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "format-au",
		Short: "Shape and count app-usage pings from a telemetry dump.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFormatJob(cfg, inputPath, outputPath, jobs.AUMapper)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "telemetry dump to read (NDJSON)")
	cmd.Flags().StringVar(&outputPath, "output", "au_counts.out", "job output file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newActivationsCommand(cfg config.Config) *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "count-activations",
		Short: "Count device activations with full dimension rollups.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFormatJob(cfg, inputPath, outputPath, jobs.ActivationsMapper)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "telemetry dump to read (NDJSON)")
	cmd.Flags().StringVar(&outputPath, "output", "activation_counts.out", "job output file")
	cmd.MarkFlagRequired("input")
	return cmd
}
