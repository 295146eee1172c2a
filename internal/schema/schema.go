// Package schema validates caller input before anything is sent to the remote
// reasoning service.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/immowert/internal/model"
	"github.com/go-playground/validator/v10"
)

var plzPattern = regexp.MustCompile(`^\d{5}$`)

// Validator checks valuation requests, land-value queries and addresses.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used for the construction-year upper bound.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New creates a validator with the domain rules registered.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.validate.RegisterValidation("plz", func(fl validator.FieldLevel) bool {
		return plzPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("buildingclass", func(fl validator.FieldLevel) bool {
		return model.BuildingClass(fl.Field().String()).Valid()
	})
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.now().Year())
	})
	_ = v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return v
}

// ParseValuationRequest decodes raw JSON and validates it. Type mismatches are
// reported as KindMalformed, rule violations as KindInvalid.
func (v *Validator) ParseValuationRequest(raw []byte) (model.ValuationRequest, error) {
	var req model.ValuationRequest
	if err := decodeTyped(raw, &req); err != nil {
		return model.ValuationRequest{}, err
	}
	if err := v.ValidateRequest(req); err != nil {
		return model.ValuationRequest{}, err
	}
	return req, nil
}

// ValidateRequest applies every field rule to an already decoded request. It
// does not require a procedure flag; see RequireProcedure.
func (v *Validator) ValidateRequest(req model.ValuationRequest) error {
	errs := &ValidationErrors{}
	v.collect(errs, req)

	if req.MiteigentumsanteilZaehler != nil && req.MiteigentumsanteilNenner != nil &&
		*req.MiteigentumsanteilZaehler > *req.MiteigentumsanteilNenner {
		errs.add(&ValidationError{
			Field:  "miteigentumsanteilZaehler",
			Reason: "darf nicht größer als der Nenner sein",
			Kind:   KindInvalid,
		})
	}

	return errs.orNil()
}

// ValidateAddress checks the four address fields.
func (v *Validator) ValidateAddress(addr model.Address) error {
	errs := &ValidationErrors{}
	v.collect(errs, addr)
	if err := errs.orNil(); err != nil {
		for _, fieldErr := range errs.Errors {
			fieldErr.Field = "address." + fieldErr.Field
		}
		return err
	}
	return nil
}

// ParseLandValueQuery decodes and validates the input of a land-value lookup.
func (v *Validator) ParseLandValueQuery(raw []byte) (model.LandValueQuery, error) {
	var query model.LandValueQuery
	if err := decodeTyped(raw, &query); err != nil {
		return model.LandValueQuery{}, err
	}
	if err := v.ValidateLandValueQuery(query); err != nil {
		return model.LandValueQuery{}, err
	}
	return query, nil
}

// ValidateLandValueQuery checks an already decoded land-value query.
func (v *Validator) ValidateLandValueQuery(query model.LandValueQuery) error {
	errs := &ValidationErrors{}
	v.collect(errs, query)
	return errs.orNil()
}

// RequireProcedure fails unless at least one procedure flag is set.
func RequireProcedure(req model.ValuationRequest) error {
	if len(req.SelectedProcedures()) > 0 {
		return nil
	}
	return &ValidationErrors{Errors: []*ValidationError{{
		Field:  "procedures",
		Reason: "Mindestens ein Bewertungsverfahren muss ausgewählt sein",
		Kind:   KindInvalid,
		Err:    ErrNoProcedureSelected,
	}}}
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func (v *Validator) collect(errs *ValidationErrors, target any) {
	err := v.validate.Struct(target)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.add(&ValidationError{Reason: err.Error(), Kind: KindMalformed, Err: err})
		return
	}

	for _, fe := range fieldErrs {
		errs.add(&ValidationError{
			Field:  fieldPath(fe.Namespace()),
			Reason: reason(fe),
			Kind:   KindInvalid,
		})
	}
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "ist erforderlich"
	case "plz":
		return "PLZ muss 5-stellig sein"
	case "gte":
		return fmt.Sprintf("muss mindestens %s sein", fe.Param())
	case "lte":
		return fmt.Sprintf("darf höchstens %s sein", fe.Param())
	case "notfuture":
		return "darf nicht in der Zukunft liegen"
	case "buildingclass":
		return "ist keine bekannte Gebäudeklasse"
	case "isodate":
		return "muss ein Datum im Format JJJJ-MM-TT sein"
	default:
		return "ist ungültig"
	}
}

// decodeTyped decodes raw into target, reporting empty input, syntax errors
// and type mismatches as KindMalformed. Unknown keys are ignored: browser
// clients send the whole form state, including toggles a query does not use.
func decodeTyped(raw []byte, target any) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return &ValidationErrors{Errors: []*ValidationError{{
			Reason: "Eingabe ist leer",
			Kind:   KindMalformed,
		}}}
	}

	err := json.Unmarshal(raw, target)
	if err == nil {
		return nil
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &typeErr):
		return &ValidationErrors{Errors: []*ValidationError{{
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("erwartet %s, erhalten %s", typeErr.Type, typeErr.Value),
			Kind:   KindMalformed,
			Err:    err,
		}}}
	case errors.As(err, &syntaxErr):
		return &ValidationErrors{Errors: []*ValidationError{{
			Reason: fmt.Sprintf("kein gültiges JSON (Position %d)", syntaxErr.Offset),
			Kind:   KindMalformed,
			Err:    err,
		}}}
	default:
		return &ValidationErrors{Errors: []*ValidationError{{
			Reason: err.Error(),
			Kind:   KindMalformed,
			Err:    err,
		}}}
	}
}
