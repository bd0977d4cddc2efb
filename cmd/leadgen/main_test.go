package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadgen/internal/connector"
	"github.com/jonathan/leadgen/internal/types"
)

// writeTestConfig writes a config that silences logging and removes the test source delay.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := `{
  "log_level": "error",
  "source_overrides": {"test": {"delay": "0ms"}}
}`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var springfieldArgs = []string{
	"generate", "--memory",
	"--city", "Springfield", "--country", "USA", "--niche", "bakery",
	"--limit", "10", "--sources", "test",
}

func TestGenerateCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, stderr, err := execute(t, append(springfieldArgs, "--config", cfg)...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "LEAD GENERATION REPORT")
	assert.Contains(t, stdout, "Status:     completed")
	assert.Contains(t, stdout, "Inserted:   5")
	assert.Contains(t, stdout, "• test: 5")
	assert.Contains(t, stderr, "→ Starting Test Scraper scraper...")
	assert.Contains(t, stderr, "→ Completed Test Scraper scraper: 5 leads found")
}

func TestGenerateCommand_JSONQuiet(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, stderr, err := execute(t, append(springfieldArgs, "--config", cfg, "--json", "--quiet")...)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var report types.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 5, report.TotalFound)
	assert.Equal(t, 5, report.SuccessfullyInserted)
	assert.Equal(t, []string{connector.TestName}, report.SourcesUsed)
}

func TestGenerateCommand_MissingFlags(t *testing.T) {
	_, _, err := execute(t, "generate", "--memory", "--country", "USA", "--niche", "bakery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "city" not set`)
}

func TestGenerateCommand_BlankCriteria(t *testing.T) {
	cfg := writeTestConfig(t)

	_, _, err := execute(t, "generate", "--memory", "--config", cfg,
		"--city", "  ", "--country", "USA", "--niche", "bakery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "City")
}

func TestCommands_RequireDatabase(t *testing.T) {
	cfg := writeTestConfig(t)

	for _, name := range []string{"query", "stats", "cleanup", "dedup-log", "export", "migrate"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, name, "--config", cfg)
			assert.ErrorIs(t, err, errNoDatabase)
		})
	}
}

func TestMigrateCommand_Memory(t *testing.T) {
	_, _, err := execute(t, "migrate", "--memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a database")
}

func TestReadCommands_EmptyMemoryStore(t *testing.T) {
	cfg := writeTestConfig(t)

	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"query"}, "No leads found"},
		{[]string{"stats"}, "Total leads:  0"},
		{[]string{"cleanup"}, "NO DUPLICATES FOUND"},
		{[]string{"dedup-log"}, "No entries"},
		{[]string{"export", "--output", filepath.Join(t.TempDir(), "out.csv")}, "No leads found to export"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			stdout, _, err := execute(t, append(tt.args, "--memory", "--config", cfg)...)
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.expected)
		})
	}
}

func TestQueryCommand_JSON(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, _, err := execute(t, "query", "--memory", "--config", cfg, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}

func TestSourcesCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, _, err := execute(t, "sources", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "google_maps")
	assert.Contains(t, stdout, "Yellow Pages")
	assert.Contains(t, stdout, "2.0s")
	assert.Contains(t, stdout, "linkedin")
}

func TestSourcesCommand_JSON(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, _, err := execute(t, "sources", "--config", cfg, "--json")
	require.NoError(t, err)

	var sources []connector.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &sources))
	require.Len(t, sources, 5)
	assert.Equal(t, "google_maps", sources[0].Name)
}

func TestInvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"concurrency": 0}`), 0o600))

	_, _, err := execute(t, "stats", "--memory", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCleanupCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	stdout, _, err := execute(t, "cleanup", "--memory", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "NO DUPLICATES FOUND")

	stdout, _, err = execute(t, "cleanup", "--memory", "--config", cfg, "--json")
	require.NoError(t, err)

	var result types.CleanupResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, types.CleanupResult{}, result)
}
