// Package observability wires OpenTelemetry tracing and metrics and the
// structured logger shared by every codefix surface (CLI, LSP, MCP).
package observability

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// AppMode identifies how the binary was launched.
type AppMode string

// Application modes.
const (
	ModeCLI AppMode = "cli"
	ModeLSP AppMode = "lsp"
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName     = "codefix"
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables OTLP export.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporters.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the root trace sampling ratio. Zero samples everything.
	SampleRatio float64

	// TraceVerbose keeps per-provider spans. When false only request level
	// spans are exported.
	TraceVerbose bool

	// MetricsAddr enables the Prometheus reader. The address itself is
	// served by [NewDiagnosticsServer].
	MetricsAddr string

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeout bounds the flush on shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

func (cfg Config) logOutput() io.Writer {
	if cfg.LogOutput == nil {
		return os.Stderr
	}

	return cfg.LogOutput
}

func (cfg Config) exportsMetrics() bool {
	return cfg.OTLPEndpoint != "" || cfg.MetricsAddr != ""
}
