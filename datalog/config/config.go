// Package config loads evaluation settings for the datalog command from a
// YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/janus-fixpoint/datalog/executor"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// Config mirrors the flags of "datalog eval". Flags given on the command line
// override file values.
type Config struct {
	Strategy    string `yaml:"strategy"`
	Output      string `yaml:"output"`
	Verbose     bool   `yaml:"verbose"`
	Stats       bool   `yaml:"stats"`
	Parallel    bool   `yaml:"parallel"`
	Workers     int    `yaml:"workers"`
	IDBOnly     bool   `yaml:"idb_only"`
	StrictArity bool   `yaml:"strict_arity"`
	Snapshot    string `yaml:"snapshot"` // badger directory, empty = none

	// SnapshotKeys is the key encoding of the snapshot: binary, text or l85
	SnapshotKeys string `yaml:"snapshot_keys"`
}

// Default returns the settings used when no file is given
func Default() *Config {
	return &Config{
		Strategy: string(executor.SemiNaive),
		Output:   "output.txt",

		SnapshotKeys: "binary",
	}
}

// Load reads path over the defaults. A missing file is an error; an empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvironment overrides settings from DATALOG_* variables. Malformed
// values are ignored.
func (c *Config) ApplyEnvironment() {
	if v := os.Getenv("DATALOG_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("DATALOG_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("DATALOG_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("DATALOG_PARALLEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Parallel = b
		}
	}
	if v := os.Getenv("DATALOG_SNAPSHOT"); v != "" {
		c.Snapshot = v
	}
}

// Validate checks the strategy name and worker count
func (c *Config) Validate() error {
	if _, err := executor.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := storage.ParseKeyEncoding(c.SnapshotKeys); err != nil {
		return err
	}
	if c.Output == "" {
		return fmt.Errorf("output path is empty")
	}
	return nil
}

// ExecutorOptions converts the settings to evaluator options. Call Validate
// first; an unknown strategy falls back to semi-naive.
func (c *Config) ExecutorOptions() executor.Options {
	opts := executor.DefaultOptions()
	if s, err := executor.ParseStrategy(c.Strategy); err == nil {
		opts.Strategy = s
	}
	opts.Parallel = c.Parallel
	opts.MaxWorkers = c.Workers
	opts.StrictArity = c.StrictArity
	return opts
}
