package config

import (
	"strings"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
)

// EngineConfig converts the engine section.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if c.Engine.Parallelism > 0 {
		cfg.Parallelism = c.Engine.Parallelism
	}

	cfg.ProviderTimeout = c.Engine.ProviderTimeout

	return cfg.Without(c.Engine.Disabled...)
}

// ObservabilityConfig converts the logging and telemetry sections for a
// process running in mode. The config must have passed Validate.
func (c *Config) ObservabilityConfig(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version

	if level, err := observability.ParseLevel(c.Logging.Level); err == nil {
		cfg.LogLevel = level
	}

	cfg.LogJSON = c.Logging.JSON
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = parseHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.TraceVerbose = c.Telemetry.TraceVerbose
	cfg.MetricsAddr = c.Telemetry.MetricsAddr

	return cfg
}

// parseHeaders reads "key=value,key=value". Malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}
