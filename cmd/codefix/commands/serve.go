package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codefix/internal/lsp"
	"github.com/Sumatoshi-tech/codefix/internal/mcp"
	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/pkg/version"
)

func newLSPCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Serve code actions to editors over LSP (stdio)",
		Long: `Start a Language Server Protocol server on stdio.

Refactorings are offered for the selected range and code fixes for every
diagnostic in the request that carries a code. Edits are computed on
codeAction/resolve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := opts.start(ctx, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer rt.close()

			stop, err := rt.startDiagnostics(ctx)
			if err != nil {
				return err
			}
			defer stop()

			srv, err := lsp.NewServer(rt.svc, lsp.Options{
				Version:   version.Version,
				CacheSize: rt.cfg.LSP.CacheSize,
				Logger:    rt.providers.Logger,
				Tracer:    rt.providers.Tracer,
				Meter:     rt.providers.Meter,
				RED:       rt.red,
			})
			if err != nil {
				return err //nolint:wrapcheck // already wrapped.
			}

			return srv.Run(ctx) //nolint:wrapcheck // already wrapped.
		},
	}
}

func newMCPCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the list and apply tools over MCP (stdio)",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes two tools:
  - codefix_list_actions: list the actions at a position in a C# file or snippet
  - codefix_apply_action: apply one action by key and return the text or a diff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := opts.start(ctx, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.close()

			stop, err := rt.startDiagnostics(ctx)
			if err != nil {
				return err
			}
			defer stop()

			srv := mcp.NewServer(rt.svc, mcp.ServerDeps{
				Logger:  rt.providers.Logger,
				Metrics: rt.red,
				Tracer:  rt.providers.Tracer,
				Version: version.Version,
			})

			return srv.Run(ctx) //nolint:wrapcheck // already wrapped.
		},
	}
}
