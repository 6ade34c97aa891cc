package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dzeber/fxos-metrics/internal/config"
)

// watchJobOutput rebuilds datasets whenever the job output file is
// rewritten. Writers replace the file with several write events in a burst,
// so rebuilds are debounced.
func watchJobOutput(cfg config.Config, mode, jobOutput, outDir string) error {
	rebuild := func() error {
		switch mode {
		case "dashboard":
			return buildDashboardDatasets(cfg, jobOutput, outDir, "", false)
		case "au-tables":
			return buildAUDatasets(cfg, jobOutput, outDir, false)
		}
		return fmt.Errorf("unknown watch mode %q", mode)
	}

	if err := rebuild(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: rewrites often replace the file inode.
	if err := watcher.Add(filepath.Dir(jobOutput)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(jobOutput), err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(500*time.Millisecond, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	target := filepath.Clean(jobOutput)
	fmt.Printf("watching %s\n", target)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		case <-pending:
			if err := rebuild(); err != nil {
				log.Printf("rebuild failed: %v", err)
			}
		case <-sigs:
			fmt.Println("stopping")
			return nil
		}
	}
}

func newWatchCommand(cfg config.Config) *cobra.Command {
	var mode, jobOutput, outDir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild datasets whenever the job output file changes.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return watchJobOutput(cfg, mode, jobOutput, outDir)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "dashboard", "dataset to rebuild: dashboard or au-tables")
	cmd.Flags().StringVar(&jobOutput, "job-output", "", "job output file to watch")
	cmd.Flags().StringVar(&outDir, "out-dir", "datasets", "directory for CSV output")
	cmd.MarkFlagRequired("job-output")
	return cmd
}
