package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".codefix"
	configType      = "yaml"
	envPrefix       = "CODEFIX"
	envKeySeparator = "_"
)

// Defaults.
const (
	DefaultProviderTimeout = "0s"
	DefaultMaxFileSize     = "2MB"
	DefaultLogLevel        = "info"
	DefaultLSPCacheSize    = 64
)

// LoadConfig loads configuration from defaults, then the config file, then
// env vars. An explicit configPath must exist; otherwise .codefix.yaml is
// searched in the working directory and $HOME, and a missing file is not an
// error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults registers every key so AutomaticEnv can override it.
func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("engine.parallelism", 0)
	viperCfg.SetDefault("engine.provider_timeout", DefaultProviderTimeout)
	viperCfg.SetDefault("engine.disabled", []string{})

	viperCfg.SetDefault("documents.max_file_size", DefaultMaxFileSize)
	viperCfg.SetDefault("documents.banner", "")
	viperCfg.SetDefault("documents.normalize_whitespace", false)

	viperCfg.SetDefault("catalog.path", "")

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.trace_verbose", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")

	viperCfg.SetDefault("lsp.cache_size", DefaultLSPCacheSize)
}
