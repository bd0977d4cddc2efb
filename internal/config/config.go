// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/leadgen/internal/connector"
	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/schemas"
)

// Default values applied by MergeWithDefaults.
const (
	DefaultConcurrency = 4
	DefaultLimit       = 50
	DefaultPort        = 8080
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // console or json

	// Acquisition
	Concurrency    int      `json:"concurrency,omitempty"`     // Connectors run at once
	DefaultLimit   int      `json:"default_limit,omitempty"`   // Total lead limit when none is given
	Sources        []string `json:"sources,omitempty"`         // Default source names
	EnableLinkedIn bool     `json:"enable_linkedin,omitempty"` // Register the LinkedIn source as enabled
	UseBrowser     bool     `json:"use_browser,omitempty"`     // Render Google Maps with a headless browser when needed

	Server          ServerConfig              `json:"server,omitempty"`
	SourceOverrides map[string]SourceOverride `json:"source_overrides,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port       int    `json:"port,omitempty"`
	CORSOrigin string `json:"cors_origin,omitempty"`
}

// SourceOverride adjusts one connector, mostly for testing against mirrors.
type SourceOverride struct {
	BaseURL     string `json:"base_url,omitempty"`
	Delay       string `json:"delay,omitempty"` // Go duration, e.g. "1.5s"
	MaxAttempts int    `json:"max_attempts,omitempty"`
}

// LoadConfig loads configuration from a JSON file, validating it against the
// config schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := schemas.ValidateConfig(data); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'default_limit' must be non-negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	for name, o := range c.SourceOverrides {
		if o.Delay == "" {
			continue
		}
		if d, err := time.ParseDuration(o.Delay); err != nil || d < 0 {
			return fmt.Errorf("config error: invalid delay %q for source %s", o.Delay, name)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.DefaultLimit == 0 {
		result.DefaultLimit = defaults.DefaultLimit
	}
	if len(result.Sources) == 0 {
		result.Sources = defaults.Sources
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.CORSOrigin == "" {
		result.Server.CORSOrigin = defaults.Server.CORSOrigin
	}
	if result.SourceOverrides == nil {
		result.SourceOverrides = defaults.SourceOverrides
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:     "info",
		LogFormat:    "console",
		Concurrency:  DefaultConcurrency,
		DefaultLimit: DefaultLimit,
		Server:       ServerConfig{Port: DefaultPort, CORSOrigin: "*"},
	}
}

// ApplyEnv overlays environment variables onto c. Set variables always win.
//
//	DATABASE_URL, LEADGEN_LOG_LEVEL, LEADGEN_LOG_FORMAT, LEADGEN_CONCURRENCY,
//	LEADGEN_SOURCES (comma-separated), LEADGEN_ENABLE_LINKEDIN, LEADGEN_USE_BROWSER, PORT
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LEADGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LEADGEN_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v, err := strconv.Atoi(os.Getenv("LEADGEN_CONCURRENCY")); err == nil && v > 0 {
		c.Concurrency = v
	}
	if v := os.Getenv("LEADGEN_SOURCES"); v != "" {
		c.Sources = splitList(v)
	}
	if v, err := strconv.ParseBool(os.Getenv("LEADGEN_ENABLE_LINKEDIN")); err == nil {
		c.EnableLinkedIn = v
	}
	if v, err := strconv.ParseBool(os.Getenv("LEADGEN_USE_BROWSER")); err == nil {
		c.UseBrowser = v
	}
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the optional config file, overlays the environment and fills
// defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// LogConfig returns the logger settings.
func (c *Config) LogConfig() observability.LogConfig {
	lc := observability.DefaultLogConfig()
	if c.LogLevel != "" {
		lc.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		lc.Encoding = c.LogFormat
	}
	return lc
}

// RegistryConfig maps source overrides onto connector options.
// Validate must have accepted c.
func (c *Config) RegistryConfig() connector.RegistryConfig {
	rc := connector.RegistryConfig{
		Sources:        make(map[string]connector.Options, len(c.SourceOverrides)),
		EnableLinkedIn: c.EnableLinkedIn,
	}

	for name, o := range c.SourceOverrides {
		opts := connector.Options{BaseURL: o.BaseURL}
		if o.Delay != "" {
			if d, err := time.ParseDuration(o.Delay); err == nil {
				delay := fetch.NewDelay(d)
				opts.Delay = &delay
			}
		}
		switch {
		case o.MaxAttempts == 1:
			opts.Retry = fetch.NoRetryPolicy()
		case o.MaxAttempts > 1:
			policy := fetch.DefaultRetryPolicy()
			policy.MaxAttempts = o.MaxAttempts
			opts.Retry = policy
		}
		rc.Sources[name] = opts
	}

	if c.UseBrowser {
		maps := rc.Sources[connector.GoogleMapsName]
		maps.Renderer = fetch.NewBrowserRenderer()
		rc.Sources[connector.GoogleMapsName] = maps
	}
	return rc
}
