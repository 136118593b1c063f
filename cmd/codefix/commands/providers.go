package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
)

func newProvidersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the registered providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.start(cmd.Context(), observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			engineCfg := rt.cfg.EngineConfig()

			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.DrawBorder = false
			tbl.AppendHeader(table.Row{"Provider", "Trigger", "Enabled"})

			for _, provider := range rt.svc.Providers() {
				tbl.AppendRow(table.Row{provider.ID(), triggerLabel(provider.Trigger()), engineCfg.IsEnabled(provider.ID())})
			}

			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())

			return nil
		},
	}
}

func triggerLabel(trigger engine.Trigger) string {
	if trigger.Kind == engine.TriggerCodeFix {
		return "code fix " + strings.Join(trigger.DiagnosticIDs, ", ")
	}

	return "refactoring"
}
