package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.x.com/2", cfg.X.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.X.RequestTimeout)
	assert.Equal(t, 25, cfg.Watch.MaxResults)
	assert.Equal(t, "state.json", cfg.Watch.StateFile)
	assert.Equal(t, ".", cfg.Report.Directory)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("X_BEARER_TOKEN", "env-token")
	t.Setenv("HANDLE", "envhandle")
	t.Setenv("XWATCH_REPORT_DIR", "/tmp/reports")
	t.Setenv("XWATCH_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.X.BearerToken)
	assert.Equal(t, "envhandle", cfg.Watch.Handle)
	assert.Equal(t, "/tmp/reports", cfg.Report.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestXWatchHandleOverridesPlainHandle(t *testing.T) {
	t.Setenv("HANDLE", "plain")
	t.Setenv("XWATCH_HANDLE", "specific")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "specific", cfg.Watch.Handle)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
x:
  base_url: https://example.test/2
watch:
  handle: filehandle
  max_results: 50
report:
  directory: ./out
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "https://example.test/2", cfg.X.BaseURL)
	assert.Equal(t, "filehandle", cfg.Watch.Handle)
	assert.Equal(t, 50, cfg.Watch.MaxResults)
	assert.Equal(t, "./out", cfg.Report.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFileMissingPathIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch: ["), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty handle", func(c *Config) { c.Watch.Handle = "" }, true},
		{"max results too small", func(c *Config) { c.Watch.MaxResults = 3 }, true},
		{"max results too large", func(c *Config) { c.Watch.MaxResults = 200 }, true},
		{"empty state file", func(c *Config) { c.Watch.StateFile = "" }, true},
		{"empty report dir", func(c *Config) { c.Report.Directory = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"zero timeout", func(c *Config) { c.X.RequestTimeout = 0 }, true},
		{"missing token is allowed here", func(c *Config) { c.X.BearerToken = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"handle":      "flaghandle",
		"max-results": 40,
		"state-file":  "alt-state.json",
		"report-dir":  "/tmp/r",
		"log-level":   "error",
	})

	assert.Equal(t, "flaghandle", cfg.Watch.Handle)
	assert.Equal(t, 40, cfg.Watch.MaxResults)
	assert.Equal(t, "alt-state.json", cfg.Watch.StateFile)
	assert.Equal(t, "/tmp/r", cfg.Report.Directory)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch:\n  handle: fromfile\n"), 0644))

	t.Setenv("XWATCH_HANDLE", "fromenv")

	// Flag beats env beats file
	cfg, err := Load(path, map[string]interface{}{"handle": "fromflag"})
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.Watch.Handle)

	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Watch.Handle)
}
