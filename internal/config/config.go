// Package config is the ambient runtime configuration for a hosting
// program: which trace channels start enabled, and the oracle
// subprocess's timeout and scratch-directory root. Shaped the way the
// teacher keeps ambient knobs — a flat struct, no DI framework — and
// loaded from an optional YAML file rather than hardcoded.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alfc-run/alfc/internal/oracle"
	"github.com/alfc-run/alfc/internal/trace"
)

// Config is the full set of ambient knobs a driver program may tune.
type Config struct {
	Trace  TraceConfig  `yaml:"trace"`
	Oracle OracleConfig `yaml:"oracle"`
}

// TraceConfig lists which internal/trace channels start enabled.
type TraceConfig struct {
	Channels []string `yaml:"channels"`
}

// OracleConfig tunes the oracle subprocess runner.
type OracleConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ScratchRoot    string `yaml:"scratch_root"`
}

// Default returns the baseline configuration used when no config file
// is present: no trace channels enabled, a 10 second oracle timeout,
// and the OS temp directory as the scratch root.
func Default() Config {
	return Config{
		Oracle: OracleConfig{TimeoutSeconds: 10, ScratchRoot: os.TempDir()},
	}
}

// Load reads path as YAML and overlays it onto Default(). A missing
// file is not an error — it just means the caller gets the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Oracle.TimeoutSeconds == 0 {
		cfg.Oracle.TimeoutSeconds = 10
	}
	if cfg.Oracle.ScratchRoot == "" {
		cfg.Oracle.ScratchRoot = os.TempDir()
	}
	return cfg, nil
}

// ApplyTrace enables c's configured trace channels on s. A driver
// program calls this once after constructing its internal/trace.Sink so
// the YAML config actually governs what gets traced.
func (c Config) ApplyTrace(s *trace.Sink) {
	for _, ch := range c.Trace.Channels {
		s.Enable(ch)
	}
}

// NewOracleCaller builds the internal/oracle.Caller c.Oracle describes:
// a ProcessRunner-backed caller with the configured scratch root and
// timeout.
func (c Config) NewOracleCaller() *oracle.Caller {
	return oracle.NewCaller(c.Oracle.ScratchRoot, time.Duration(c.Oracle.TimeoutSeconds)*time.Second)
}
