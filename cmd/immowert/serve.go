package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/immowert/internal/certs"
	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/httpapi"
	"github.com/Veraticus/immowert/internal/report"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the land-value lookup, the valuation, the history, reports
and address search over HTTP:

  POST   /api/boris
  POST   /api/valuation
  GET    /api/history
  GET    /api/history/{id}
  DELETE /api/history/{id}
  DELETE /api/history
  GET    /api/history/{id}/report
  GET    /api/geocode?q=...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			svc, err := a.newService(store)
			if err != nil {
				return err
			}

			renderer, err := report.NewMarkdownRenderer()
			if err != nil {
				return err
			}

			opts := []httpapi.Option{
				httpapi.WithHistory(store),
				httpapi.WithGeocoder(a.newGeocoder()),
				httpapi.WithRenderer(renderer),
				httpapi.WithLogger(slog.Default()),
			}

			scheme := "http"
			if a.cfg.Server.TLS {
				cert, err := certs.NewStore(a.cfg.Server.CertDir).Certificate()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				opts = append(opts, httpapi.WithTLS(cert))
				scheme = "https"
			}

			server, err := httpapi.New(svc, opts...)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("Listening on "+scheme+"://"+a.cfg.Server.Addr))
			return server.ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	return cmd
}
