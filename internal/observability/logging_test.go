package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadgen.log")

	logger, err := NewLogger(LogConfig{Level: "warn", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("source failed", zap.String("source", "yelp"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"source failed"`)
	assert.Contains(t, lines[0], `"source":"yelp"`)
	assert.Contains(t, lines[0], `"level":"warn"`)
}

func TestInitLogging_ReplacesGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.log")

	flush, err := InitLogging(LogConfig{Level: "info", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	zap.L().Info("run started")
	flush()
	zap.L().Info("after restore")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run started")
	assert.NotContains(t, string(data), "after restore")
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}
