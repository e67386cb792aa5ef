package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/site?sslmode=disable")
	t.Setenv("PAGEGEN_LOG_LEVEL", "")

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.Site.RootID)
	assert.Equal(t, "./dist/index.html", cfg.Site.ShellPath)
	assert.Equal(t, RecordsPostgres, cfg.Records.Kind)
	assert.Equal(t, "postgres://u:p@db:5432/site?sslmode=disable", cfg.Records.DSN)
	assert.Equal(t, 2, cfg.Records.MaxRetries)
	assert.Equal(t, RetryBackoffExponential, cfg.Records.RetryBackoff)
	assert.Equal(t, 4, cfg.Build.Concurrency)
	assert.False(t, cfg.Build.FailOnItemError)
	assert.Equal(t, "./dist", cfg.Output.Directory)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)

	initial, maxDelay, timeout := cfg.Records.Durations()
	assert.Equal(t, 500*time.Millisecond, initial)
	assert.Equal(t, 5*time.Second, maxDelay)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestParse_ExpandsEnvAndNormalizes(t *testing.T) {
	t.Setenv("PAGEGEN_TEST_DSN", "/tmp/records.db")
	t.Setenv("PAGEGEN_LOG_LEVEL", "")

	cfg, err := Parse([]byte(`
site:
  base_url: "https://billing.example.org/"
records:
  kind: SQLite3
  dsn: ${PAGEGEN_TEST_DSN}
  max_retries: 0
  retry_backoff: LINEAR
build:
  concurrency: 1
  fail_on_item_error: true
logging:
  level: WARNING
  format: JSON
`))
	require.NoError(t, err)

	assert.Equal(t, "https://billing.example.org", cfg.Site.BaseURL)
	assert.Equal(t, RecordsSQLite, cfg.Records.Kind)
	assert.Equal(t, "/tmp/records.db", cfg.Records.DSN)
	assert.Equal(t, 0, cfg.Records.MaxRetries, "explicit zero disables retries")
	assert.Equal(t, RetryBackoffLinear, cfg.Records.RetryBackoff)
	assert.Equal(t, 1, cfg.Build.Concurrency)
	assert.True(t, cfg.Build.FailOnItemError)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_LogLevelEnvOverride(t *testing.T) {
	t.Setenv("PAGEGEN_LOG_LEVEL", "debug")
	cfg, err := Parse([]byte("records:\n  kind: none\nlogging:\n  level: error\n"))
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
}

func TestParse_ValidationErrors(t *testing.T) {
	t.Setenv("PAGEGEN_LOG_LEVEL", "")

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown records kind", "records:\n  kind: oracle\n", "invalid records.kind"},
		{"relative base url", "site:\n  base_url: www.example.com\n", "absolute http(s) URL"},
		{"base url with path", "site:\n  base_url: https://example.com/blog\n", "origin without path"},
		{"bad duration", "records:\n  kind: none\n  query_timeout: soon\n", "invalid records.query_timeout"},
		{"file kind without dsn", "records:\n  kind: file\n", "snapshot file"},
		{"cache without redis", "records:\n  kind: none\n  cache:\n    enabled: true\n", "redis_url is required"},
		{"report dir equals output", "records:\n  kind: none\noutput:\n  directory: ./out\n  report_dir: out\n", "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_URL", "")
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoadOrDefault_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PAGEGEN_LOG_LEVEL", "")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./dist", cfg.Output.Directory)
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/site")
	t.Setenv("PAGEGEN_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), DefaultPath)

	require.NoError(t, Init(path, false))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "${DATABASE_URL}")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/site", cfg.Records.DSN)
	assert.Equal(t, "0 3 * * *", cfg.Build.Schedule)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, Init(path, true))
}
