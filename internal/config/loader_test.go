package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "codefix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultMaxFileSize, cfg.Documents.MaxFileSize)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLSPCacheSize, cfg.LSP.CacheSize)
	assert.Zero(t, cfg.Engine.ProviderTimeout)
	assert.Empty(t, cfg.Engine.Disabled)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `engine:
  parallelism: 2
  provider_timeout: 150ms
  disabled: [InvertIfElse]
documents:
  max_file_size: 512KB
  banner: "// <auto-generated />"
  normalize_whitespace: true
lsp:
  cache_size: 8
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Engine.Parallelism)
	assert.Equal(t, 150*time.Millisecond, cfg.Engine.ProviderTimeout)
	assert.Equal(t, []string{"InvertIfElse"}, cfg.Engine.Disabled)
	assert.Equal(t, "// <auto-generated />", cfg.Documents.Banner)
	assert.True(t, cfg.Documents.NormalizeWhitespace)
	assert.Equal(t, 8, cfg.LSP.CacheSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")

	t.Setenv("CODEFIX_LOGGING_LEVEL", "debug")
	t.Setenv("CODEFIX_TELEMETRY_METRICS_ADDR", ":9464")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9464", cfg.Telemetry.MetricsAddr)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	_, err = config.LoadConfig(writeConfig(t, "engine:\n  disabled: [Nope]\n"))
	require.ErrorIs(t, err, config.ErrUnknownProvider)

	_, err = config.LoadConfig(writeConfig(t, "engine: [broken"))
	require.Error(t, err)
}
