package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/config"
	"github.com/Veraticus/immowert/internal/sheets"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"verlauf"},
		Short:   "Show and manage past valuations",
	}

	cmd.AddCommand(a.historyListCmd())
	cmd.AddCommand(a.historyShowCmd())
	cmd.AddCommand(a.historyDeleteCmd())
	cmd.AddCommand(a.historyClearCmd())
	cmd.AddCommand(a.historyExportCmd())
	return cmd
}

func (a *app) historyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored valuations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entries := store.List(cmd.Context())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderHistory(entries))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print entries as JSON")
	return cmd
}

func (a *app) historyShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored valuation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return entryError(args[0], err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderEntry(entry))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the entry as JSON")
	return cmd
}

func (a *app) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete one stored valuation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := store.Get(cmd.Context(), args[0]); err != nil {
				return entryError(args[0], err)
			}
			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return common.NewUserError("Eintrag konnte nicht gelöscht werden", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Eintrag gelöscht"))
			return err
		},
	}
}

func (a *app) historyClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored valuation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if !force {
				ok, err := cli.Confirm(cmd.Context(), a.stdin, cmd.OutOrStdout(), "Gesamten Verlauf löschen?")
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nichts gelöscht."))
					return nil
				}
			}

			if err := store.Clear(cmd.Context()); err != nil {
				return common.NewUserError("Verlauf konnte nicht gelöscht werden", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Verlauf gelöscht"))
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) historyExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history to a Google Sheets spreadsheet",
		Long: `Export writes every stored valuation to a Google Sheets spreadsheet,
replacing its previous contents. Without sheets.spreadsheet_id a new
spreadsheet is created and its ID printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadSheets(a.v)
			if err != nil {
				return common.NewUserError("Google Sheets ist nicht konfiguriert", err)
			}

			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entries := store.List(cmd.Context())
			id, err := cli.Spin(cmd.Context(), cmd.ErrOrStderr(), "Export läuft", func(ctx context.Context) (string, error) {
				service, err := sheets.Connect(ctx, cfg)
				if err != nil {
					return "", err
				}
				return sheets.NewExporter(service, cfg, slog.Default()).Export(ctx, entries)
			})
			if err != nil {
				return common.NewUserError("Export nach Google Sheets fehlgeschlagen", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(),
				cli.FormatSuccess(fmt.Sprintf("%d Bewertungen exportiert (Tabelle %s)", len(entries), id)))
			return err
		},
	}

	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to overwrite")
	_ = a.v.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))
	return cmd
}

func entryError(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("Kein Eintrag mit der ID %s", id), err)
	}
	return err
}
