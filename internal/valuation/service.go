// Package valuation runs the two request/response cycles of the application:
// land-value lookup and multi-procedure valuation. It validates input,
// compiles the prompt, calls the remote service once, validates the reply and
// records successful valuations in the history.
package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/prompt"
	"github.com/Veraticus/immowert/internal/response"
	"github.com/Veraticus/immowert/internal/schema"
)

// User-facing messages.
const (
	MsgInvalidInput      = "Ungültige Eingabedaten. Bitte überprüfen Sie alle Pflichtfelder."
	MsgNoProcedure       = "Mindestens ein Bewertungsverfahren muss ausgewählt sein."
	MsgIncompleteAddress = "Adresse ist unvollständig. Straße, PLZ und Ort sind erforderlich."
	MsgValuationFailed   = "Fehler bei der Bewertungsberechnung. Bitte versuchen Sie es erneut."
	MsgLandValueFailed   = "Fehler bei der Bodenrichtwert-Recherche. Bitte versuchen Sie es erneut."
)

// History records successful valuations.
type History interface {
	Append(ctx context.Context, req model.ValuationRequest, result model.ValuationResult) (model.HistoryEntry, error)
}

// Outcome is a successful valuation. Entry is nil when the history is not
// configured or could not be written.
type Outcome struct {
	Entry  *model.HistoryEntry
	Result model.ValuationResult
}

// Service is the pipeline. It holds no per-call state, so overlapping calls
// are independent.
type Service struct {
	compiler  *prompt.Compiler
	invoker   llm.Invoker
	history   History
	validator *schema.Validator
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHistory enables recording of successful valuations.
func WithHistory(h History) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithValidator replaces the request validator.
func WithValidator(v *schema.Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// New creates a Service.
func New(compiler *prompt.Compiler, invoker llm.Invoker, opts ...Option) *Service {
	s := &Service{
		compiler:  compiler,
		invoker:   invoker,
		validator: schema.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator returns the request validator the service uses.
func (s *Service) Validator() *schema.Validator {
	return s.validator
}

// LookupLandValue researches the standard land value for an address.
func (s *Service) LookupLandValue(ctx context.Context, query model.LandValueQuery) (model.LandValueResult, error) {
	if err := s.validator.ValidateLandValueQuery(query); err != nil {
		msg := MsgInvalidInput
		if addressInvalid(err) {
			msg = MsgIncompleteAddress
		}
		return model.LandValueResult{}, common.NewUserError(msg, err)
	}

	p, err := s.compiler.CompileLandValue(query)
	if err != nil {
		return model.LandValueResult{}, s.fail(MsgLandValueFailed, err, prompt.OpLandValueLookup)
	}

	raw, err := s.invoke(ctx, p)
	if err != nil {
		return model.LandValueResult{}, s.fail(MsgLandValueFailed, err, prompt.OpLandValueLookup)
	}

	result, err := response.DecodeLandValue(raw)
	if err != nil {
		return model.LandValueResult{}, s.fail(MsgLandValueFailed, err, prompt.OpLandValueLookup)
	}

	s.logger.Info("land value found",
		"plz", query.Address.PLZ,
		"bodenrichtwert", result.Bodenrichtwert,
		"quelle", result.Quelle)
	return result, nil
}

// LookupLandValueRaw decodes a JSON query before looking it up. A market value
// sent with "verkehrswertAktiv": false is dropped.
func (s *Service) LookupLandValueRaw(ctx context.Context, raw []byte) (model.LandValueResult, error) {
	query, err := s.validator.ParseLandValueQuery(raw)
	if err != nil {
		msg := MsgInvalidInput
		if addressInvalid(err) {
			msg = MsgIncompleteAddress
		}
		return model.LandValueResult{}, common.NewUserError(msg, err)
	}

	var toggle struct {
		VerkehrswertAktiv *bool `json:"verkehrswertAktiv"`
	}
	if err := json.Unmarshal(raw, &toggle); err == nil && toggle.VerkehrswertAktiv != nil && !*toggle.VerkehrswertAktiv {
		query.Verkehrswert = nil
	}

	return s.LookupLandValue(ctx, query)
}

// Valuate runs a multi-procedure valuation.
func (s *Service) Valuate(ctx context.Context, req model.ValuationRequest) (Outcome, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		return Outcome{}, common.NewUserError(MsgInvalidInput, err)
	}
	return s.valuate(ctx, req)
}

// ValuateRaw decodes and validates a JSON request before valuating it.
func (s *Service) ValuateRaw(ctx context.Context, raw []byte) (Outcome, error) {
	req, err := s.validator.ParseValuationRequest(raw)
	if err != nil {
		return Outcome{}, common.NewUserError(MsgInvalidInput, err)
	}
	return s.valuate(ctx, req)
}

func (s *Service) valuate(ctx context.Context, req model.ValuationRequest) (Outcome, error) {
	if err := schema.RequireProcedure(req); err != nil {
		return Outcome{}, common.NewUserError(MsgNoProcedure, err)
	}

	p, err := s.compiler.CompileValuation(req)
	if err != nil {
		return Outcome{}, s.fail(MsgValuationFailed, err, prompt.OpMultiProcedureValuation)
	}

	raw, err := s.invoke(ctx, p)
	if err != nil {
		return Outcome{}, s.fail(MsgValuationFailed, err, prompt.OpMultiProcedureValuation)
	}

	result, err := response.DecodeValuation(raw)
	if err != nil {
		return Outcome{}, s.fail(MsgValuationFailed, err, prompt.OpMultiProcedureValuation)
	}

	outcome := Outcome{Result: result}
	if s.history != nil {
		entry, err := s.history.Append(ctx, req, result)
		if err != nil {
			common.LogError(s.logger, err, "failed to record valuation", common.Fields{"plz": req.Address.PLZ})
		} else {
			outcome.Entry = &entry
		}
	}

	s.logger.Info("valuation completed",
		"plz", req.Address.PLZ,
		"procedures", len(req.SelectedProcedures()))
	return outcome, nil
}

func (s *Service) invoke(ctx context.Context, p prompt.Prompt) (string, error) {
	start := time.Now()
	raw, err := s.invoker.Invoke(ctx, p.System, p.User, p.Options())
	if err != nil {
		return "", err
	}
	s.logger.Debug("reply received",
		"operation", p.Operation.String(),
		"duration", time.Since(start),
		"bytes", len(raw))
	return raw, nil
}

// fail logs the technical error and hides it behind the generic message.
func (s *Service) fail(msg string, err error, op prompt.Operation) error {
	fields := common.Fields{
		"operation":  op.String(),
		"downstream": common.IsDownstream(err),
	}

	var (
		transportErr *common.TransportError
		schemaErr    *common.SchemaError
	)
	switch {
	case errors.As(err, &transportErr):
		fields["provider"] = transportErr.Provider
		fields["status"] = transportErr.StatusCode
	case errors.As(err, &schemaErr):
		fields["path"] = schemaErr.Path
	}

	common.LogError(s.logger, err, fmt.Sprintf("%s failed", op), fields)
	return common.NewUserError(msg, err)
}

func addressInvalid(err error) bool {
	var errs *schema.ValidationErrors
	if !errors.As(err, &errs) {
		return false
	}
	for _, fieldErr := range errs.Errors {
		if strings.HasPrefix(fieldErr.Field, "address.") {
			return true
		}
	}
	return false
}
