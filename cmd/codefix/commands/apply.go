package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codefix/internal/document"
	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/internal/service"
)

const diffContextLines = 3

// ErrNoAction is returned when --action is missing.
var ErrNoAction = errors.New("--action is required (see codefix actions)")

type applyOptions struct {
	selection

	action string
	write  bool
	diff   bool
}

func newApplyCommand(opts *rootOptions) *cobra.Command {
	var applyOpts applyOptions

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply one action and print, diff or write the result",
		Long: `Apply the action with the given key at a selection. The rewritten file is
printed unless --diff or --write is given.

Examples:
  codefix apply Program.cs --offset 120 --action ReplaceForEachWithFor.ascending --diff
  codefix apply Program.cs --offset 88 --diagnostic CS0109 --action RemoveNewModifier --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if applyOpts.action == "" {
				return ErrNoAction
			}

			req, err := applyOpts.request()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			rt, err := opts.start(ctx, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			done := rt.red.Observe(ctx, "cli.apply")
			defer func() { done(err) }()

			path := args[0]

			doc, err := rt.svc.Load(ctx, path)
			if err != nil {
				return err //nolint:wrapcheck // service errors carry the path.
			}

			applied, err := rt.svc.ApplyKey(ctx, doc, req, applyOpts.action)
			if err != nil {
				return err //nolint:wrapcheck // service errors carry the path.
			}

			out := cmd.OutOrStdout()

			switch {
			case applyOpts.diff:
				renderDiff(out, path, applied)
			case !applyOpts.write:
				fmt.Fprint(out, applied.After)
			}

			if !applyOpts.write {
				return nil
			}

			status, err := rt.svc.Write(path, applied)
			if err != nil {
				return err //nolint:wrapcheck // service errors carry the path.
			}

			renderStatus(cmd.ErrOrStderr(), path, status)

			return nil
		},
	}

	applyOpts.register(cmd)
	cmd.Flags().StringVar(&applyOpts.action, "action", "", "equivalence key of the action to apply")
	cmd.Flags().BoolVar(&applyOpts.write, "write", false, "write the result back when it changed")
	cmd.Flags().BoolVar(&applyOpts.diff, "diff", false, "print a colored line diff instead of the new text")

	return cmd
}

func renderDiff(out io.Writer, path string, applied *service.Applied) {
	header := color.New(color.Bold)
	header.Fprintf(out, "--- %s\n+++ %s (%s)\n", path, path, applied.Action.Title())

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	for _, line := range service.ChangedLines(service.LineDiff(applied.Before, applied.After), diffContextLines) {
		text := line.Prefix() + line.Text

		switch line.Op {
		case diffmatchpatch.DiffInsert:
			added.Fprintln(out, text)
		case diffmatchpatch.DiffDelete:
			removed.Fprintln(out, text)
		default:
			fmt.Fprintln(out, text)
		}
	}
}

func renderStatus(out io.Writer, path string, status document.WriteStatus) {
	if status == document.StatusSaved {
		color.New(color.FgGreen).Fprintf(out, "%s: %s\n", path, status)

		return
	}

	fmt.Fprintf(out, "%s: %s\n", path, status)
}
