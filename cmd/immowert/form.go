package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/schema"
	"github.com/Veraticus/immowert/internal/tui"
)

func (a *app) formCmd() *cobra.Command {
	var (
		flags  requestFlags
		inline bool
		dryRun bool
		saveTo string
	)

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Enter a valuation request interactively",
		Long: `Form opens the intake form, pre-filled from --input and --set. Submitting
runs the valuation unless --dry-run is given, in which case the request is
printed as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initial, err := a.loadRequest(flags.input, flags.assignments, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			validator := schema.New()
			req, err := tui.Run(cmd.Context(), initial,
				tui.WithValidator(validator.ValidateRequest),
				tui.WithAltScreen(!inline))
			if errors.Is(err, tui.ErrAborted) {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("Eingabe abgebrochen."))
				return nil
			}
			if err != nil {
				return err
			}

			if saveTo != "" {
				if err := saveRequest(saveTo, req); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Eingaben gespeichert: "+saveTo))
			}

			if dryRun {
				return writeJSON(cmd.OutOrStdout(), req)
			}
			return a.runValuation(cmd.Context(), req, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.lookupLand, "lookup-land-value", false, "research the Bodenrichtwert first when none is given")
	cmd.Flags().BoolVar(&inline, "inline", false, "render inline instead of on the alternate screen")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the request instead of valuating it")
	cmd.Flags().StringVar(&saveTo, "save", "", "also write the submitted request to this YAML file")

	return cmd
}
