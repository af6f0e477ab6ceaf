package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// ConfigFileEnv names the environment variable holding an optional YAML file path.
const ConfigFileEnv = "CONFIG_FILE"

// Load builds the configuration from, in increasing precedence: the defaults,
// the YAML file named by CONFIG_FILE (if set), and environment variables.
// Returns an error if the file cannot be read or validation fails.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadFile overlays the keys present in a YAML file onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxFiles <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILES must be positive")
	}

	// Pipeline validation
	if c.Pipeline.MaxConcurrent <= 0 {
		errs = append(errs, "PIPELINE_MAX_CONCURRENT must be positive")
	}
	if c.Pipeline.MaxWait <= 0 {
		errs = append(errs, "PIPELINE_MAX_WAIT must be positive")
	}
	if c.Pipeline.PreviewRows <= 0 {
		errs = append(errs, "PIPELINE_PREVIEW_ROWS must be positive")
	}
	if c.Pipeline.ChartMaxRows < 0 {
		errs = append(errs, "PIPELINE_CHART_MAX_ROWS must be non-negative (0 plots every row)")
	}

	// Store validation
	if c.Store.TTL <= 0 {
		errs = append(errs, "STORE_TTL must be positive")
	}
	if c.Store.MaxFiles < c.Upload.MaxFiles {
		errs = append(errs, fmt.Sprintf("STORE_MAX_FILES (%d) must be >= UPLOAD_MAX_FILES (%d)",
			c.Store.MaxFiles, c.Upload.MaxFiles))
	}
	if c.Store.SweepInterval <= 0 {
		errs = append(errs, "STORE_SWEEP_INTERVAL must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.Upload <= 0 {
		errs = append(errs, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}
	if c.Rate.Burst < 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The Seq URL may carry an API key and is masked.
func (c *Config) String() string {
	seq := "[none]"
	if c.Logging.SeqURL != "" {
		seq = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Upload: {MaxFileSize: %d, MaxFiles: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxFiles))
	b.WriteString(fmt.Sprintf("Pipeline: {MaxConcurrent: %d, MaxWait: %s, PreviewRows: %d, ChartMaxRows: %d}, ",
		c.Pipeline.MaxConcurrent, c.Pipeline.MaxWait, c.Pipeline.PreviewRows, c.Pipeline.ChartMaxRows))
	b.WriteString(fmt.Sprintf("Store: {TTL: %s, MaxFiles: %d}, ", c.Store.TTL, c.Store.MaxFiles))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, Seq: %s}",
		c.Logging.Level, c.Logging.Format, seq))
	b.WriteString("}")
	return b.String()
}
