// Package config provides centralized configuration management for the application.
// It loads configuration from an optional YAML file and environment variables
// with sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every setting can be configured via environment variables; CONFIG_FILE may
// name a YAML file whose values sit between the defaults and the environment.
type Config struct {
	Server   ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Upload   UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Pipeline PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Store    StoreConfig     `yaml:"store" envconfig:"STORE"`
	Rate     RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Security SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig   `yaml:"logging" envconfig:"LOG"`
	Metrics  MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" split_words:"true"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" split_words:"true"`

	// ReadTimeout is the maximum duration for reading a request, body included (default: 60s)
	ReadTimeout time.Duration `yaml:"read_timeout" split_words:"true"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`

	// IdleTimeout is the keep-alive timeout (default: 120s)
	IdleTimeout time.Duration `yaml:"idle_timeout" split_words:"true"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	// MaxFileSize is the maximum size of one uploaded file in bytes (default: 50MB)
	MaxFileSize int64 `yaml:"max_file_size" split_words:"true"`

	// MaxFiles is the maximum number of files in one upload (default: 10)
	MaxFiles int `yaml:"max_files" split_words:"true"`
}

// PipelineConfig holds evaluation settings.
type PipelineConfig struct {
	// MaxConcurrent is the maximum number of parallel evaluations (default: 4)
	MaxConcurrent int `yaml:"max_concurrent" split_words:"true"`

	// MaxWait is how long to wait for an evaluation slot (default: 10s)
	MaxWait time.Duration `yaml:"max_wait" split_words:"true"`

	// PreviewRows is the number of rows in each head preview (default: 5)
	PreviewRows int `yaml:"preview_rows" split_words:"true"`

	// ChartMaxRows caps the rows plotted in the bar chart (default: 500)
	ChartMaxRows int `yaml:"chart_max_rows" split_words:"true"`
}

// StoreConfig holds in-memory upload store settings.
type StoreConfig struct {
	// TTL is how long an untouched upload is kept (default: 1h)
	TTL time.Duration `yaml:"ttl" split_words:"true"`

	// MaxFiles is the maximum number of uploads held at once (default: 200)
	MaxFiles int `yaml:"max_files" split_words:"true"`

	// SweepInterval is how often expired uploads are evicted (default: 5m)
	SweepInterval time.Duration `yaml:"sweep_interval" split_words:"true"`
}

// RateLimitConfig holds rate limiting settings per client IP.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `yaml:"enabled" split_words:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `yaml:"requests_per_minute" split_words:"true"`

	// Upload is requests per minute for upload endpoints (default: 10)
	Upload int `yaml:"upload" split_words:"true"`

	// Burst is the number of requests allowed above the steady rate (default: 20)
	Burst int `yaml:"burst" split_words:"true"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `yaml:"trusted_proxies" split_words:"true"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `yaml:"enable_csp" split_words:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" split_words:"true"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" split_words:"true"`

	// SeqURL is a Seq server to ship logs to in addition to stdout (optional)
	SeqURL string `yaml:"seq_url" split_words:"true"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics (default: true)
	Enabled bool `yaml:"enabled" split_words:"true"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSize: 50 << 20,
			MaxFiles:    10,
		},
		Pipeline: PipelineConfig{
			MaxConcurrent: 4,
			MaxWait:       10 * time.Second,
			PreviewRows:   5,
			ChartMaxRows:  500,
		},
		Store: StoreConfig{
			TTL:           time.Hour,
			MaxFiles:      200,
			SweepInterval: 5 * time.Minute,
		},
		Rate: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			Upload:            10,
			Burst:             20,
		},
		Security: SecurityConfig{EnableCSP: true},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Metrics:  MetricsConfig{Enabled: true},
	}
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
