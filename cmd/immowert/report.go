package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/report"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		procedure string
		output    string
	)

	cmd := &cobra.Command{
		Use:     "report <id>",
		Aliases: []string{"bericht"},
		Short:   "Write a Markdown report for a stored valuation",
		Long: `Report renders one procedure (--procedure) or all of them as Markdown.
The file is named after the procedure and address and written to the
current directory unless --output names a file or directory. Use
--output - to print to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key model.ProcedureKey
			if procedure != "" {
				parsed, ok := model.ParseProcedureKey(procedure)
				if !ok {
					return common.NewUserError(fmt.Sprintf("Unbekanntes Verfahren %q", procedure), nil)
				}
				key = parsed
			}

			store, cleanup, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return entryError(args[0], err)
			}

			renderer, err := report.NewMarkdownRenderer()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := renderer.Render(&buf, report.Request{Created: time.Now(), Procedure: key, Entry: entry}); err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			path := reportPath(output, report.FileName(entry, key, renderer.Extension()))
			if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(cli.ReportIcon+" Bericht gespeichert: "+path))
			return err
		},
	}

	cmd.Flags().StringVarP(&procedure, "procedure", "p", "", "only this procedure (ertragswertverfahren, umgekehrtesErtragswertverfahren, vergleichswertverfahren)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (- for stdout)")
	return cmd
}

// reportPath resolves --output: empty means the default name in the working
// directory, an existing directory gets the default name inside it.
func reportPath(output, name string) string {
	if output == "" {
		return name
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}
