package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every rate limiting environment variable.
const EnvPrefix = "LEADGEN_RATE_LIMIT_"

// EndpointConfig is the bucket rule for one method and path.
// Path matches exactly first, then as a prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int // bucket capacity; 0 means Limit
}

// LoadConfig reads the limiter settings from the environment:
//
//	LEADGEN_RATE_LIMIT_ENABLED           (default true)
//	LEADGEN_RATE_LIMIT_DEFAULT_LIMIT     requests per window for unlisted routes (default 1000)
//	LEADGEN_RATE_LIMIT_DEFAULT_WINDOW    (default 1m)
//	LEADGEN_RATE_LIMIT_CLEANUP_INTERVAL  idle bucket sweep (default 5m)
//	LEADGEN_RATE_LIMIT_GENERATE_LIMIT    runs per hour per client for /generate, /generate/stream and /cleanup (default 10)
//	LEADGEN_RATE_LIMIT_WHITELIST         comma-separated client IPs never limited
//	LEADGEN_RATE_LIMIT_BLACKLIST         comma-separated client IPs always rejected
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	env := envReader{getenv: getenv}

	if !env.boolean("ENABLED", true) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	if runs := env.integer("GENERATE_LIMIT", 0); runs > 0 {
		for i := range endpoints {
			if endpoints[i].Method == "POST" {
				endpoints[i].Limit = runs
			}
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer("DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.duration("DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(env.get("WHITELIST")),
		Blacklist:       parseIPList(env.get("BLACKLIST")),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the per-route rules.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Acquisition runs hit third-party sites
		{Path: "/generate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/generate/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		// Store maintenance
		{Path: "/cleanup", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		// Full-table reads
		{Path: "/export", Method: "GET", Limit: 60, Window: time.Minute, Burst: 5},

		// Everything else uses the default limit; /health and /metrics are unlimited
	}
}

// envReader reads prefixed variables, falling back to a default when a value
// is unset or does not parse.
type envReader struct {
	getenv func(string) string
}

func (e envReader) get(name string) string {
	return strings.TrimSpace(e.getenv(EnvPrefix + name))
}

func (e envReader) integer(name string, fallback int) int {
	if v, err := strconv.Atoi(e.get(name)); err == nil {
		return v
	}
	return fallback
}

func (e envReader) boolean(name string, fallback bool) bool {
	if v, err := strconv.ParseBool(e.get(name)); err == nil {
		return v
	}
	return fallback
}

func (e envReader) duration(name string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(e.get(name)); err == nil {
		return v
	}
	return fallback
}

// parseIPList turns "a, b,,c" into a set of client IDs.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
