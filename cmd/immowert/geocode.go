package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/geocode"
)

func (a *app) geocodeCmd() *cobra.Command {
	var (
		jsonOutput bool
		reverse    bool
		lat, lon   float64
	)

	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Search German addresses",
		Long: `Geocode looks up address candidates so the request fields can be filled
in. With --reverse it resolves --lat/--lon to the nearest address instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.newGeocoder()

			var candidates []geocode.Candidate
			if reverse {
				hit, err := client.Reverse(cmd.Context(), lat, lon)
				if err != nil {
					return common.NewUserError("Adresssuche fehlgeschlagen", err)
				}
				candidates = []geocode.Candidate{hit}
			} else {
				query := joinArgs(args)
				if query == "" {
					return common.NewUserError("Bitte eine Adresse angeben", nil)
				}
				hits, err := cli.Spin(cmd.Context(), cmd.ErrOrStderr(), "Adresse wird gesucht", func(ctx context.Context) ([]geocode.Candidate, error) {
					return client.Search(ctx, query)
				})
				if err != nil {
					return common.NewUserError("Adresssuche fehlgeschlagen", err)
				}
				candidates = hits
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), candidates)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCandidates(candidates))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print candidates as JSON")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "resolve --lat/--lon instead of searching")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude for --reverse")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude for --reverse")
	return cmd
}
