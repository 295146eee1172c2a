package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/valuation"
)

type requestFlags struct {
	input       string
	assignments []string
	lookupLand  bool
	jsonOutput  bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "request file in JSON or YAML (- for stdin)")
	cmd.Flags().StringArrayVarP(&f.assignments, "set", "s", nil, "set a field, e.g. --set plz=10115 (repeatable)")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "print the result as JSON")
}

func (a *app) valuateCmd() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Run a multi-procedure valuation",
		Long: `Valuate sends the request to the remote service and prints all three
procedures. Procedures that were not requested are shown dimmed.

Fields come from --input and are then overridden by --set, in order:

  immowert valuate -i haus.yaml --set useVergleichswertverfahren=ja`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(flags.input, flags.assignments, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.runValuation(cmd.Context(), req, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.lookupLand, "lookup-land-value", false, "research the Bodenrichtwert first when none is given")

	return cmd
}

func (a *app) runValuation(ctx context.Context, req model.ValuationRequest, flags requestFlags, out, status io.Writer) error {
	store, cleanup, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := a.newService(store)
	if err != nil {
		return err
	}

	if flags.lookupLand {
		if req, err = fillLandValue(ctx, svc, req, out, status); err != nil {
			return err
		}
	}

	outcome, err := cli.Spin(ctx, status, "Bewertung läuft", func(ctx context.Context) (valuation.Outcome, error) {
		return svc.Valuate(ctx, req)
	})
	if err != nil {
		return err
	}

	if flags.jsonOutput {
		return writeJSON(out, outcome.Result)
	}

	_, _ = fmt.Fprintln(out, cli.RenderValuation(outcome.Result, req))
	if outcome.Entry != nil {
		_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Im Verlauf gespeichert (%s)", outcome.Entry.ID)))
	} else {
		_, _ = fmt.Fprintln(status, cli.FormatWarning("Die Bewertung konnte nicht im Verlauf gespeichert werden."))
	}
	return nil
}
