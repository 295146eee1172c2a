package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/model"
)

func (a *app) landValueCmd() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:     "landvalue",
		Aliases: []string{"bodenrichtwert"},
		Short:   "Research the Bodenrichtwert for an address",
		Long: `Landvalue asks the remote service, with web search enabled, for the
standard land value of the address. The market value is only passed on
when verkehrswertAktiv is set.

  immowert landvalue --set strasse=Invalidenstraße --set hausnummer=117 \
    --set plz=10115 --set ort=Berlin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.loadRequest(flags.input, flags.assignments, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			svc, err := a.newService(nil)
			if err != nil {
				return err
			}

			result, err := cli.Spin(cmd.Context(), cmd.ErrOrStderr(), "Bodenrichtwert wird recherchiert",
				func(ctx context.Context) (model.LandValueResult, error) {
					return svc.LookupLandValue(ctx, req.LandValueQuery())
				})
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderLandValue(result))
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
