// Package commands implements the codefix subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codefix/internal/config"
	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/internal/service"
	"github.com/Sumatoshi-tech/codefix/pkg/version"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

// NewRootCommand builds the codefix command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "codefix",
		Short: "Semantic C# refactorings and code fixes",
		Long: `codefix offers and applies semantics-preserving C# refactorings and code fixes.

Commands:
  actions   List the actions available at a position
  apply     Apply one action and print, diff or write the result
  providers List the registered providers
  lsp       Serve code actions to editors over LSP (stdio)
  mcp       Serve the list and apply tools over MCP (stdio)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: .codefix.yaml in the working directory or $HOME)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newActionsCommand(opts),
		newApplyCommand(opts),
		newProvidersCommand(opts),
		newLSPCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// runtime is the per-invocation wiring of config, telemetry and service.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	svc       *service.Service
}

func (opts *rootOptions) start(ctx context.Context, mode observability.AppMode) (*runtime, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.ObservabilityConfig(mode, version.Version)
	if opts.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &runtime{cfg: cfg, providers: providers}

	rt.red, err = observability.NewREDMetrics(providers.Meter)
	if err != nil {
		rt.close()

		return nil, err
	}

	rt.svc, err = service.New(cfg, service.Deps{
		Logger: providers.Logger,
		Tracer: providers.Tracer,
		Meter:  providers.Meter,
	})
	if err != nil {
		rt.close()

		return nil, err
	}

	return rt, nil
}

func (rt *runtime) close() {
	if err := rt.providers.Shutdown(context.Background()); err != nil {
		rt.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// startDiagnostics serves health and metrics when telemetry.metrics_addr is
// set. The returned stop function is always safe to call.
func (rt *runtime) startDiagnostics(ctx context.Context) (func(), error) {
	addr := rt.cfg.Telemetry.MetricsAddr
	if addr == "" {
		return func() {}, nil
	}

	diag, err := observability.NewDiagnosticsServer(ctx, addr, rt.providers, rt.red)
	if err != nil {
		return nil, fmt.Errorf("start diagnostics server: %w", err)
	}

	rt.providers.Logger.Info("diagnostics server listening", "addr", diag.Addr())

	return func() {
		if closeErr := diag.Close(context.Background()); closeErr != nil {
			rt.providers.Logger.Warn("diagnostics server close failed", "error", closeErr)
		}
	}, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
