package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"
)

// JobConfig tunes the counting jobs.
type JobConfig struct {
	Workers int `json:"workers"`
	// OverlapToleranceMs bounds the session overlap treated as a shared
	// boundary rather than a real inconsistency.
	OverlapToleranceMs int64 `json:"overlap_tolerance_ms"`
	// ValidOSPattern matches OS versions counted under their own name;
	// everything else is grouped as Other. Empty means the built-in
	// pattern.
	ValidOSPattern string `json:"valid_os_pattern"`
	// EarliestPingDate (YYYY-MM-DD) is the oldest acceptable ping date.
	EarliestPingDate string `json:"earliest_ping_date"`
	// DogfoodPattern matches device IDs in the dogfood program.
	DogfoodPattern string `json:"dogfood_pattern"`
}

// DatasetConfig tunes the generated dataset windows.
type DatasetConfig struct {
	DashboardDays int `json:"dashboard_days"`
	DumpDays      int `json:"dump_days"`
}

type Config struct {
	// LookupDir holds the reference tables (country codes, mobile codes,
	// languages, field whitelists).
	LookupDir    string        `json:"lookup_dir"`
	DatabasePath string        `json:"database_path"`
	Job          JobConfig     `json:"job"`
	Datasets     DatasetConfig `json:"datasets"`
}

func DefaultConfig() Config {
	return Config{
		LookupDir:    "lookup",
		DatabasePath: filepath.Join(ConfigDir(), "fxosmetrics.db"),
		Job: JobConfig{
			OverlapToleranceMs: 5000,
			EarliestPingDate:   "2014-01-01",
			DogfoodPattern:     "^(dogfood|foxfood)",
		},
		Datasets: DatasetConfig{
			DashboardDays: 180,
			DumpDays:      180,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "fxos-metrics")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fxos-metrics")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	def := DefaultConfig()
	if cfg.Job.OverlapToleranceMs <= 0 {
		cfg.Job.OverlapToleranceMs = def.Job.OverlapToleranceMs
	}
	if cfg.Job.EarliestPingDate == "" {
		cfg.Job.EarliestPingDate = def.Job.EarliestPingDate
	}
	if cfg.Job.DogfoodPattern == "" {
		cfg.Job.DogfoodPattern = def.Job.DogfoodPattern
	}
	if cfg.Datasets.DashboardDays <= 0 {
		cfg.Datasets.DashboardDays = def.Datasets.DashboardDays
	}
	if cfg.Datasets.DumpDays <= 0 {
		cfg.Datasets.DumpDays = def.Datasets.DumpDays
	}
	if cfg.LookupDir == "" {
		cfg.LookupDir = def.LookupDir
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = def.DatabasePath
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// EarliestPing parses the configured earliest ping date.
func (c Config) EarliestPing() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Job.EarliestPingDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing earliest_ping_date: %w", err)
	}
	return t, nil
}

// DogfoodRegexp compiles the configured dogfood device pattern.
func (c Config) DogfoodRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.Job.DogfoodPattern)
	if err != nil {
		return nil, fmt.Errorf("parsing dogfood_pattern: %w", err)
	}
	return re, nil
}
