// Package config loads codefix settings from defaults, an optional YAML
// file and CODEFIX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/pkg/levenshtein"
	"github.com/Sumatoshi-tech/codefix/pkg/refactorings"
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	LSP       LSPConfig       `mapstructure:"lsp"`
}

// EngineConfig holds provider scheduling knobs.
type EngineConfig struct {
	// Parallelism caps concurrent providers; zero means GOMAXPROCS.
	Parallelism     int           `mapstructure:"parallelism"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	Disabled        []string      `mapstructure:"disabled"`
}

// DocumentsConfig holds source file handling settings.
type DocumentsConfig struct {
	// MaxFileSize is a humanize size such as "2MB".
	MaxFileSize         string `mapstructure:"max_file_size"`
	Banner              string `mapstructure:"banner"`
	NormalizeWhitespace bool   `mapstructure:"normalize_whitespace"`
}

// CatalogConfig points at an extra type catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
}

// LSPConfig holds language server settings.
type LSPConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidParallelism     = errors.New("engine.parallelism must be non-negative")
	ErrInvalidProviderTimeout = errors.New("engine.provider_timeout must be non-negative")
	ErrUnknownProvider        = errors.New("engine.disabled names an unknown provider")
	ErrInvalidMaxFileSize     = errors.New("documents.max_file_size is not a size")
	ErrInvalidLogLevel        = errors.New("logging.level is not a level")
	ErrInvalidSampleRatio     = errors.New("telemetry.sample_ratio must be between 0 and 1")
	ErrInvalidCacheSize       = errors.New("lsp.cache_size must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	if c.LSP.CacheSize < 0 {
		return ErrInvalidCacheSize
	}

	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Parallelism < 0 {
		return ErrInvalidParallelism
	}

	if c.Engine.ProviderTimeout < 0 {
		return ErrInvalidProviderTimeout
	}

	ids := make([]string, 0, len(refactorings.All()))
	for _, provider := range refactorings.All() {
		ids = append(ids, provider.ID())
	}

	for _, id := range c.Engine.Disabled {
		if slices.Contains(ids, id) {
			continue
		}

		if suggestion, ok := levenshtein.Closest(id, ids); ok {
			return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownProvider, id, suggestion)
		}

		return fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}

	return nil
}

// MaxFileSizeBytes parses documents.max_file_size. Empty means no limit
// and yields zero.
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	if c.Documents.MaxFileSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.Documents.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Documents.MaxFileSize)
	}

	return size, nil
}
