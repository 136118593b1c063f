package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ErrInvalidSelection is returned for negative offsets or lengths.
var ErrInvalidSelection = errors.New("offset and length must be non-negative")

// selection holds the flags locating a request in a file.
type selection struct {
	offset     int
	length     int
	diagnostic string
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sel.offset, "offset", 0, "byte offset of the selection start")
	cmd.Flags().IntVar(&sel.length, "length", 0, "selection length in bytes")
	cmd.Flags().StringVar(&sel.diagnostic, "diagnostic", "", "diagnostic id (e.g. CS0109) to request code fixes")
}

func (sel *selection) request() (engine.Request, error) {
	if sel.offset < 0 || sel.length < 0 {
		return engine.Request{}, ErrInvalidSelection
	}

	return engine.Request{
		Span:         syntax.Span{Start: sel.offset, Length: sel.length},
		DiagnosticID: strings.TrimSpace(sel.diagnostic),
	}, nil
}

func newActionsCommand(opts *rootOptions) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "actions FILE",
		Short: "List the actions available at a position",
		Long: `List the refactorings (or, with --diagnostic, the code fixes) available
for a selection in a C# file.

Examples:
  codefix actions Program.cs --offset 120
  codefix actions Program.cs --offset 88 --diagnostic CS0109`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			req, err := sel.request()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			rt, err := opts.start(ctx, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			done := rt.red.Observe(ctx, "cli.actions")
			defer func() { done(err) }()

			doc, err := rt.svc.Load(ctx, args[0])
			if err != nil {
				return err //nolint:wrapcheck // service errors carry the path.
			}

			result, err := rt.svc.ListActions(ctx, doc, req)
			if err != nil {
				return err //nolint:wrapcheck // service errors carry the path.
			}

			renderActions(cmd.OutOrStdout(), cmd.ErrOrStderr(), req, result)

			return nil
		},
	}

	sel.register(cmd)

	return cmd
}

func renderActions(out, errOut io.Writer, req engine.Request, result engine.Result) {
	if len(result.Actions) == 0 {
		fmt.Fprintf(out, "No actions at %s\n", req.Span)
	} else {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.Style().Options.SeparateRows = false
		tbl.Style().Options.DrawBorder = false

		tbl.AppendHeader(table.Row{"#", "Key", "Title", "Provider"})

		for idx, action := range result.Actions {
			tbl.AppendRow(table.Row{strconv.Itoa(idx + 1), action.EquivalenceKey(), action.Title(), action.ProviderID()})
		}

		tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d actions", len(result.Actions))})

		fmt.Fprintln(out, tbl.Render())
	}

	warn := color.New(color.FgYellow)

	for _, fault := range result.Faults {
		warn.Fprintf(errOut, "provider %s failed: %s\n", fault.ProviderID, fault.Message)
	}
}
