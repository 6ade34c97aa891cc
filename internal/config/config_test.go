package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Job.OverlapToleranceMs != 5000 {
		t.Errorf("default tolerance = %d, want 5000", cfg.Job.OverlapToleranceMs)
	}
	if cfg.Job.EarliestPingDate != "2014-01-01" {
		t.Errorf("default earliest ping = %q", cfg.Job.EarliestPingDate)
	}
	if cfg.Datasets.DashboardDays != 180 {
		t.Errorf("default dashboard window = %d, want 180", cfg.Datasets.DashboardDays)
	}
	if _, err := cfg.EarliestPing(); err != nil {
		t.Errorf("EarliestPing: %v", err)
	}
	if _, err := cfg.DogfoodRegexp(); err != nil {
		t.Errorf("DogfoodRegexp: %v", err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom("/tmp/nonexistent_fxosmetrics_test.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Job.OverlapToleranceMs != 5000 {
		t.Error("should return defaults for missing file")
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	content := `{
		"lookup_dir": "/srv/metrics/lookup",
		"job": {
			"workers": 8,
			"overlap_tolerance_ms": 2500,
			"earliest_ping_date": "2014-04-01"
		},
		"datasets": {
			"dashboard_days": 90
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.LookupDir != "/srv/metrics/lookup" {
		t.Errorf("lookup dir = %q", cfg.LookupDir)
	}
	if cfg.Job.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Job.Workers)
	}
	if cfg.Job.OverlapToleranceMs != 2500 {
		t.Errorf("tolerance = %d, want 2500", cfg.Job.OverlapToleranceMs)
	}
	if cfg.Job.EarliestPingDate != "2014-04-01" {
		t.Errorf("earliest ping = %q", cfg.Job.EarliestPingDate)
	}
	// Unset sections fall back to defaults.
	if cfg.Job.DogfoodPattern != "^(dogfood|foxfood)" {
		t.Errorf("dogfood pattern = %q, want default", cfg.Job.DogfoodPattern)
	}
	if cfg.Datasets.DashboardDays != 90 {
		t.Errorf("dashboard window = %d, want 90", cfg.Datasets.DashboardDays)
	}
	if cfg.Datasets.DumpDays != 180 {
		t.Errorf("dump window = %d, want default 180", cfg.Datasets.DumpDays)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.json")

	cfg := DefaultConfig()
	cfg.Job.Workers = 4
	cfg.DatabasePath = filepath.Join(dir, "metrics.db")
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Job.Workers != 4 {
		t.Errorf("workers = %d, want 4", loaded.Job.Workers)
	}
	if loaded.DatabasePath != cfg.DatabasePath {
		t.Errorf("database path = %q", loaded.DatabasePath)
	}
}
