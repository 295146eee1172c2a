package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/config"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/schema"
)

var version = "dev"

// app carries everything the commands share. Tests swap newInvoker for a stub.
type app struct {
	v          *viper.Viper
	stdin      io.Reader
	newInvoker func(llm.Config) (llm.Invoker, error)
	cfgFile    string
	cfg        config.Config
}

func newApp() *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{
		v:          v,
		stdin:      os.Stdin,
		newInvoker: llm.New,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "immowert",
		Short: "🏠 Immobilienbewertung nach ImmoWertV",
		Long: `immowert collects the facts of a German property, asks a remote reasoning
service for the standard land value and for up to three valuation procedures
(Ertragswert, umgekehrter Ertragswert, Vergleichswert), validates the answer
and keeps the most recent valuations.

immowert never computes values itself.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/immowert/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console, json)")
	root.PersistentFlags().String("provider", "", "LLM provider (anthropic, openai, gemini)")
	root.PersistentFlags().String("model", "", "LLM model name")

	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("llm.provider", root.PersistentFlags().Lookup("provider"))
	_ = a.v.BindPFlag("llm.model", root.PersistentFlags().Lookup("model"))

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.landValueCmd())
	root.AddCommand(a.valuateCmd())
	root.AddCommand(a.formCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.geocodeCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background())

	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()

	if err != nil {
		if !interrupts.WasInterrupted() {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.Read(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := setupLogging(cfg.Logging); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging(cfg config.Logging) error {
	level, err := common.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	return common.SetupLogger(level, cfg.Format)
}

// printError shows the user-facing message and, for rejected input, every
// offending field.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, cli.FormatError(common.UserMessage(err, err.Error())))

	var fieldErrs *schema.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs.Errors {
			_, _ = fmt.Fprintln(w, "  "+cli.SubtleStyle.Render(fe.Error()))
		}
	}
	slog.Debug("command failed", "error", err)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "immowert %s\n", version)
		},
	}
}
