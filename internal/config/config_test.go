package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadgen/internal/connector"
	"github.com/jonathan/leadgen/internal/fetch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leadgen.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost:5432/leadgen",
		"log_level": "debug",
		"concurrency": 2,
		"sources": ["yelp", "test"],
		"enable_linkedin": true,
		"server": {"port": 9000},
		"source_overrides": {"yelp": {"base_url": "http://127.0.0.1:1234/search", "delay": "10ms", "max_attempts": 1}}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost:5432/leadgen", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, []string{"yelp", "test"}, cfg.Sources)
	assert.True(t, cfg.EnableLinkedIn)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "10ms", cfg.SourceOverrides["yelp"].Delay)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{"empty path", func(*testing.T) string { return "" }, "config path is empty"},
		{"missing file", func(*testing.T) string { return "/nonexistent/path/config.json" }, "failed to read config file"},
		{"malformed JSON", func(t *testing.T) string { return writeConfig(t, `{ invalid json }`) }, "invalid config file"},
		{"schema violation", func(t *testing.T) string { return writeConfig(t, `{"log_level": "loud"}`) }, "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.path(t))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"negative concurrency", Config{Concurrency: -1}, "concurrency"},
		{"negative limit", Config{DefaultLimit: -5}, "default_limit"},
		{"bad port", Config{Server: ServerConfig{Port: 70000}}, "server.port"},
		{"bad delay", Config{SourceOverrides: map[string]SourceOverride{"yelp": {Delay: "-1s"}}}, "invalid delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{LogLevel: "warn", Sources: []string{"yelp"}}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "warn", merged.LogLevel, "explicit values win")
	assert.Equal(t, []string{"yelp"}, merged.Sources)
	assert.Equal(t, "console", merged.LogFormat)
	assert.Equal(t, DefaultConcurrency, merged.Concurrency)
	assert.Equal(t, DefaultLimit, merged.DefaultLimit)
	assert.Equal(t, DefaultPort, merged.Server.Port)
	assert.Empty(t, cfg.LogFormat, "receiver is not modified")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/leadgen")
	t.Setenv("LEADGEN_LOG_LEVEL", "error")
	t.Setenv("LEADGEN_CONCURRENCY", "8")
	t.Setenv("LEADGEN_SOURCES", " yelp, ,google_maps ")
	t.Setenv("LEADGEN_ENABLE_LINKEDIN", "true")
	t.Setenv("PORT", "not-a-number")

	cfg := Config{LogLevel: "debug", Server: ServerConfig{Port: 9000}}
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://env/leadgen", cfg.DatabaseURL)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"yelp", "google_maps"}, cfg.Sources)
	assert.True(t, cfg.EnableLinkedIn)
	assert.Equal(t, 9000, cfg.Server.Port, "unparseable values are ignored")
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("LEADGEN_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, "json", cfg.LogConfig().Encoding)
}

func TestRegistryConfig(t *testing.T) {
	cfg := Config{
		EnableLinkedIn: true,
		UseBrowser:     true,
		SourceOverrides: map[string]SourceOverride{
			"yelp":        {BaseURL: "http://mirror/search", Delay: "250ms", MaxAttempts: 1},
			"yellowpages": {MaxAttempts: 5},
		},
	}

	rc := cfg.RegistryConfig()
	assert.True(t, rc.EnableLinkedIn)

	yelp := rc.Sources["yelp"]
	assert.Equal(t, "http://mirror/search", yelp.BaseURL)
	require.NotNil(t, yelp.Delay)
	assert.Equal(t, 250*time.Millisecond, yelp.Delay.Base)
	require.NotNil(t, yelp.Retry)
	assert.Equal(t, fetch.NoRetryPolicy(), yelp.Retry, "one attempt means no backoff")

	yp := rc.Sources["yellowpages"]
	require.NotNil(t, yp.Retry)
	assert.Equal(t, 5, yp.Retry.MaxAttempts)
	assert.Equal(t, fetch.DefaultRetryPolicy().InitialDelay, yp.Retry.InitialDelay)
	assert.Nil(t, yp.Delay)

	assert.NotNil(t, rc.Sources[connector.GoogleMapsName].Renderer)
	assert.Nil(t, yelp.Renderer)
}
