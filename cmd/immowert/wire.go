package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/immowert/internal/cli"
	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/form"
	"github.com/Veraticus/immowert/internal/geocode"
	"github.com/Veraticus/immowert/internal/history"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/prompt"
	"github.com/Veraticus/immowert/internal/schema"
	"github.com/Veraticus/immowert/internal/storage"
	"github.com/Veraticus/immowert/internal/valuation"
	"gopkg.in/yaml.v3"
)

// openHistory opens the configured store. The returned cleanup closes the
// underlying backend.
func (a *app) openHistory(ctx context.Context) (*history.Store, func(), error) {
	kv, err := storage.Open(ctx, a.cfg.History.Backend, a.cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history (%s): %w", a.cfg.History.Backend, err)
	}

	store := history.New(kv,
		history.WithMaxEntries(a.cfg.History.MaxEntries),
		history.WithLogger(slog.Default()))

	cleanup := func() {
		if err := kv.Close(); err != nil {
			common.LogError(slog.Default(), err, "failed to close history", common.Fields{
				"backend": string(a.cfg.History.Backend),
			})
		}
	}
	return store, cleanup, nil
}

// newService wires the pipeline. history may be nil for land-value lookups.
func (a *app) newService(store *history.Store) (*valuation.Service, error) {
	compiler, err := prompt.NewCompiler()
	if err != nil {
		return nil, err
	}

	invoker, err := a.newInvoker(a.cfg.LLM.Client())
	if err != nil {
		return nil, err
	}
	invoker = llm.WithLogging(invoker, a.cfg.LLM.Provider, slog.Default())

	opts := []valuation.Option{valuation.WithLogger(slog.Default())}
	if store != nil {
		opts = append(opts, valuation.WithHistory(store))
	}
	return valuation.New(compiler, invoker, opts...), nil
}

func (a *app) newGeocoder() *geocode.Client {
	return geocode.New(geocode.Config{
		Logger:    slog.Default(),
		BaseURL:   a.cfg.Geocode.BaseURL,
		UserAgent: a.cfg.Geocode.UserAgent,
	})
}

// loadRequest reads a JSON or YAML request from path ("-" is stdin) and then
// applies name=value assignments in order. Nothing is validated here.
func (a *app) loadRequest(path string, assignments []string, warn io.Writer) (model.ValuationRequest, error) {
	var req model.ValuationRequest

	if path != "" {
		raw, err := a.readInput(path)
		if err != nil {
			return req, err
		}
		normalized, err := schema.NormalizeYAML(raw)
		if err != nil {
			return req, common.NewUserError(valuation.MsgInvalidInput, err)
		}
		if err := json.Unmarshal(normalized, &req); err != nil {
			return req, common.NewUserError(valuation.MsgInvalidInput, err)
		}
	}

	updates := make([]form.Update, 0, len(assignments))
	for _, s := range assignments {
		u, err := form.ParseAssignment(s)
		if err != nil {
			return req, common.NewUserError(fmt.Sprintf("Ungültige Zuweisung %q", s), err)
		}
		updates = append(updates, u)
	}

	req, cleared, err := form.ApplyAll(req, updates)
	if err != nil {
		return req, common.NewUserError(valuation.MsgInvalidInput, err)
	}
	for _, f := range cleared {
		_, _ = fmt.Fprintln(warn, cli.FormatWarning(fmt.Sprintf("%s wurde geleert", f.Label())))
	}
	return req, nil
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Datei %s kann nicht gelesen werden", path), err)
	}
	return raw, nil
}

// fillLandValue looks up the standard land value when the request has none.
func fillLandValue(ctx context.Context, svc *valuation.Service, req model.ValuationRequest, out, status io.Writer) (model.ValuationRequest, error) {
	if req.Bodenrichtwert != nil {
		return req, nil
	}

	result, err := cli.Spin(ctx, status, "Bodenrichtwert wird recherchiert", func(ctx context.Context) (model.LandValueResult, error) {
		return svc.LookupLandValue(ctx, req.LandValueQuery())
	})
	if err != nil {
		return req, err
	}

	_, _ = fmt.Fprintln(out, cli.RenderLandValue(result))
	req.Bodenrichtwert = model.Float(result.Bodenrichtwert)
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// saveRequest writes req as YAML so it can be passed back with --input.
func saveRequest(path string, req model.ValuationRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
