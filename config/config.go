/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML structure.
type Config struct {
	// Backends holds connection settings for the bundled backends.
	Backends BackendsConfig `yaml:"backends"`
	// Pipeline holds toggles and settings for the standard middleware.
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// BackendsConfig holds backend connection settings. Secrets are referenced
// by environment variable name, not stored in the file; call LoadEnv first
// when they live in a .env file.
type BackendsConfig struct {
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
	DDB      *DDBConfig      `yaml:"ddb,omitempty"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	// DSNEnv names the environment variable holding the connection string.
	DSNEnv string `yaml:"dsn_env"`
}

// DSN resolves the connection string from the environment.
func (c *PostgresConfig) DSN() (string, error) {
	if c.DSNEnv == "" {
		return "", fmt.Errorf("postgres: dsn_env is required")
	}
	dsn := os.Getenv(c.DSNEnv)
	if dsn == "" {
		return "", fmt.Errorf("postgres: environment variable %s is not set", c.DSNEnv)
	}
	return dsn, nil
}

// DDBConfig configures the DynamoDB backend.
type DDBConfig struct {
	Region       string `yaml:"region"`
	Table        string `yaml:"table"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// Credentials resolves the access and secret keys from the environment.
func (c *DDBConfig) Credentials() (accessKey, secretKey string, err error) {
	if c.AccessKeyEnv == "" || c.SecretKeyEnv == "" {
		return "", "", fmt.Errorf("ddb: access_key_env and secret_key_env are required")
	}
	accessKey = os.Getenv(c.AccessKeyEnv)
	secretKey = os.Getenv(c.SecretKeyEnv)
	if accessKey == "" || secretKey == "" {
		return "", "", fmt.Errorf("ddb: credentials not set in environment")
	}
	return accessKey, secretKey, nil
}

// PipelineConfig toggles the standard middleware. Registration order is
// fixed: logging outermost, then performance, then validation, then audit
// innermost, so log lines and timings cover validation and audit work.
type PipelineConfig struct {
	Logging     *LoggingConfig     `yaml:"logging,omitempty"`
	Performance *PerformanceConfig `yaml:"performance,omitempty"`
	Validation  *ValidationConfig  `yaml:"validation,omitempty"`
	Audit       *AuditConfig       `yaml:"audit,omitempty"`
}

// LoggingConfig configures the logging middleware.
type LoggingConfig struct {
	Enabled        bool `yaml:"enabled"`
	IncludeTimings bool `yaml:"include_timings"`
}

// PerformanceConfig configures the performance middleware.
type PerformanceConfig struct {
	Enabled bool `yaml:"enabled"`
	// SlowThreshold is parsed via time.ParseDuration. Example: "250ms".
	SlowThreshold string `yaml:"slow_threshold,omitempty"`
}

// SlowThresholdDuration parses the configured threshold. Zero when unset.
func (c *PerformanceConfig) SlowThresholdDuration() (time.Duration, error) {
	if c.SlowThreshold == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SlowThreshold)
	if err != nil {
		return 0, fmt.Errorf("performance: invalid slow_threshold: %w", err)
	}
	return d, nil
}

// ValidationConfig configures the validation middleware.
type ValidationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuditConfig configures the audit middleware.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path is an optional file to append JSON audit entries to.
	Path string `yaml:"path,omitempty"`
}

// LoadEnv loads environment variables from .env files, proceeding with the
// process environment when no file is present.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent values. Validation is
// eager so errors surface at load time rather than on first use.
func (c *Config) Validate() error {
	if pg := c.Backends.Postgres; pg != nil && pg.DSNEnv == "" {
		return fmt.Errorf("backends.postgres: dsn_env is required")
	}
	if ddb := c.Backends.DDB; ddb != nil {
		if ddb.Region == "" || ddb.Table == "" {
			return fmt.Errorf("backends.ddb: region and table are required")
		}
	}
	if perf := c.Pipeline.Performance; perf != nil {
		if _, err := perf.SlowThresholdDuration(); err != nil {
			return err
		}
	}
	return nil
}
