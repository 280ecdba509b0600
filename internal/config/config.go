// Package config manages planner configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all planner configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	API       APIConfig       `toml:"api"`
	Export    ExportConfig    `toml:"export"`
	Logging   LoggingConfig   `toml:"logging"`
}

// DatabaseConfig controls sqlite storage.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SchedulerConfig tunes the scheduling engine.
type SchedulerConfig struct {
	StepMinutes  int    `toml:"step_minutes"`
	HorizonDays  int    `toml:"horizon_days"`
	MaxSweeps    int    `toml:"max_sweeps"`
	ProjectLimit int    `toml:"project_limit"`
	DefaultTeam  string `toml:"default_team"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ExportConfig controls the plan file export.
type ExportConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Dir string `toml:"dir"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	home := prodplanHome()
	return Config{
		Database: DatabaseConfig{
			Path: filepath.Join(home, "prodplan.db"),
		},
		Scheduler: SchedulerConfig{
			StepMinutes:  15,
			HorizonDays:  365,
			MaxSweeps:    10,
			ProjectLimit: 20,
			DefaultTeam:  "production",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8844,
		},
		Export: ExportConfig{
			Path:    filepath.Join(home, "plan.jsonl"),
			Enabled: false,
		},
		Logging: LoggingConfig{
			Dir: filepath.Join(home, "logs"),
		},
	}
}

// Load reads config from the given path, falling back to defaults when the
// path is empty or the file does not exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(prodplanHome(), "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the given path.
func Save(cfg Config, path string) error {
	if path == "" {
		path = filepath.Join(prodplanHome(), "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// prodplanHome returns the planner data directory.
func prodplanHome() string {
	if env := os.Getenv("PRODPLAN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".prodplan")
}

// Home is exported for use by other packages.
func Home() string {
	return prodplanHome()
}
