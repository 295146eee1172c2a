package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/immowert/internal/model"
)

// ErrNotANumber is reported when numeric input cannot be read.
var ErrNotANumber = errors.New("not a number")

// Update is a single edit: set Field to the text Value. An empty Value clears
// optional facts and switches toggles off.
type Update struct {
	Value string
	Field Field
}

// Outcome reports what Apply did with an update.
type Outcome struct {
	// Err is set when the update was rejected and the request left unchanged.
	Err error
	// Cleared is true when unreadable numeric input removed the field's value.
	Cleared bool
}

// Apply returns a copy of req with the update applied. The input request is
// never modified.
func Apply(req model.ValuationRequest, u Update) (model.ValuationRequest, Outcome) {
	next := req.Clone()
	value := strings.TrimSpace(u.Value)
	var outcome Outcome

	switch u.Field {
	case FieldStrasse:
		next.Address.Strasse = value
	case FieldHausnummer:
		next.Address.Hausnummer = value
	case FieldPLZ:
		next.Address.PLZ = value
	case FieldOrt:
		next.Address.Ort = value
	case FieldBuildingClass:
		next.BuildingClass = model.BuildingClass(value)
	case FieldDatumKaufvertrag:
		next.DatumKaufvertrag = optionalString(value)

	case FieldKaufpreisOhneNebenkosten:
		outcome = setFloat(&next.KaufpreisOhneNebenkosten, value)
	case FieldVerkehrswert:
		outcome = setFloat(&next.Verkehrswert, value)
	case FieldNebenkostenGesamt:
		outcome = setFloat(&next.NebenkostenGesamt, value)
	case FieldLiegenschaftszins:
		outcome = setFloat(&next.Liegenschaftszins, value)
	case FieldRestnutzungsdauer:
		outcome = setFloat(&next.Restnutzungsdauer, value)
	case FieldReparaturInvestitionsbedarf:
		outcome = setFloat(&next.ReparaturInvestitionsbedarf, value)
	case FieldBodenrichtwert:
		outcome = setFloat(&next.Bodenrichtwert, value)
	case FieldGrundstuecksflaeche:
		outcome = setFloat(&next.Grundstuecksflaeche, value)

	case FieldUrspruenglichesBaujahr:
		outcome = setInt(&next.UrspruenglichesBaujahr, value)
	case FieldMiteigentumsanteilZaehler:
		outcome = setInt(&next.MiteigentumsanteilZaehler, value)
	case FieldMiteigentumsanteilNenner:
		outcome = setInt(&next.MiteigentumsanteilNenner, value)
	case FieldFiktivesBaujahrBMF:
		outcome = setInt(&next.FiktivesBaujahrBMF, value)
	case FieldFiktivesBaujahrImmoWertV:
		outcome = setInt(&next.FiktivesBaujahrImmoWertV, value)

	case FieldVerkehrswertAktiv:
		outcome = setBool(&next.VerkehrswertAktiv, value)
	case FieldFiktiveBaujahreAktiv:
		outcome = setBool(&next.FiktiveBaujahreAktiv, value)
	case FieldLiegenschaftszinsAktiv:
		outcome = setBool(&next.LiegenschaftszinsAktiv, value)
	case FieldUseErtragswertverfahren:
		outcome = setBool(&next.UseErtragswertverfahren, value)
	case FieldUseUmgekehrtesErtragswertverfahren:
		outcome = setBool(&next.UseUmgekehrtesErtragswertverfahren, value)
	case FieldUseVergleichswertverfahren:
		outcome = setBool(&next.UseVergleichswertverfahren, value)

	default:
		return req, Outcome{Err: fmt.Errorf("unknown field %d", int(u.Field))}
	}

	if outcome.Err != nil {
		return req, outcome
	}
	return next, outcome
}

// ParseAssignment reads a "name=value" pair such as "plz=10115".
func ParseAssignment(s string) (Update, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return Update{}, fmt.Errorf("expected name=value, got %q", s)
	}
	field, err := ParseField(strings.TrimSpace(name))
	if err != nil {
		return Update{}, err
	}
	return Update{Field: field, Value: value}, nil
}

// ApplyAll applies updates in order and collects the fields that were
// cleared. It stops at the first rejected update.
func ApplyAll(req model.ValuationRequest, updates []Update) (model.ValuationRequest, []Field, error) {
	var cleared []Field
	for _, u := range updates {
		var outcome Outcome
		req, outcome = Apply(req, u)
		if outcome.Err != nil {
			return req, cleared, fmt.Errorf("%s: %w", u.Field.Name(), outcome.Err)
		}
		if outcome.Cleared {
			cleared = append(cleared, u.Field)
		}
	}
	return req, cleared, nil
}

// ParseGermanNumber reads numbers written with "." as thousands separator and
// "," as decimal separator, e.g. "1.234,5".
func ParseGermanNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, ErrNotANumber
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return v, nil
}

// FormatGermanNumber renders v with a decimal comma and no grouping, the
// inverse of ParseGermanNumber.
func FormatGermanNumber(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}

// Value renders the current value of f in req as editable text.
func Value(req model.ValuationRequest, f Field) string {
	switch f {
	case FieldStrasse:
		return req.Address.Strasse
	case FieldHausnummer:
		return req.Address.Hausnummer
	case FieldPLZ:
		return req.Address.PLZ
	case FieldOrt:
		return req.Address.Ort
	case FieldBuildingClass:
		return string(req.BuildingClass)
	case FieldDatumKaufvertrag:
		if req.DatumKaufvertrag == nil {
			return ""
		}
		return *req.DatumKaufvertrag
	case FieldKaufpreisOhneNebenkosten:
		return formatFloat(req.KaufpreisOhneNebenkosten)
	case FieldVerkehrswert:
		return formatFloat(req.Verkehrswert)
	case FieldNebenkostenGesamt:
		return formatFloat(req.NebenkostenGesamt)
	case FieldLiegenschaftszins:
		return formatFloat(req.Liegenschaftszins)
	case FieldRestnutzungsdauer:
		return formatFloat(req.Restnutzungsdauer)
	case FieldReparaturInvestitionsbedarf:
		return formatFloat(req.ReparaturInvestitionsbedarf)
	case FieldBodenrichtwert:
		return formatFloat(req.Bodenrichtwert)
	case FieldGrundstuecksflaeche:
		return formatFloat(req.Grundstuecksflaeche)
	case FieldUrspruenglichesBaujahr:
		return formatInt(req.UrspruenglichesBaujahr)
	case FieldMiteigentumsanteilZaehler:
		return formatInt(req.MiteigentumsanteilZaehler)
	case FieldMiteigentumsanteilNenner:
		return formatInt(req.MiteigentumsanteilNenner)
	case FieldFiktivesBaujahrBMF:
		return formatInt(req.FiktivesBaujahrBMF)
	case FieldFiktivesBaujahrImmoWertV:
		return formatInt(req.FiktivesBaujahrImmoWertV)
	case FieldVerkehrswertAktiv:
		return formatBool(req.VerkehrswertAktiv)
	case FieldFiktiveBaujahreAktiv:
		return formatBool(req.FiktiveBaujahreAktiv)
	case FieldLiegenschaftszinsAktiv:
		return formatBool(req.LiegenschaftszinsAktiv)
	case FieldUseErtragswertverfahren:
		return formatBool(req.UseErtragswertverfahren)
	case FieldUseUmgekehrtesErtragswertverfahren:
		return formatBool(req.UseUmgekehrtesErtragswertverfahren)
	case FieldUseVergleichswertverfahren:
		return formatBool(req.UseVergleichswertverfahren)
	default:
		return ""
	}
}

func setFloat(dst **float64, value string) Outcome {
	if value == "" {
		*dst = nil
		return Outcome{}
	}
	v, err := ParseGermanNumber(value)
	if err != nil {
		*dst = nil
		return Outcome{Cleared: true}
	}
	*dst = &v
	return Outcome{}
}

func setInt(dst **int, value string) Outcome {
	if value == "" {
		*dst = nil
		return Outcome{}
	}
	v, err := ParseGermanNumber(value)
	if err != nil || v != math.Trunc(v) || v < math.MinInt || v >= math.MaxInt {
		*dst = nil
		return Outcome{Cleared: true}
	}
	n := int(v)
	*dst = &n
	return Outcome{}
}

func setBool(dst *bool, value string) Outcome {
	switch strings.ToLower(value) {
	case "", "nein", "n", "false", "0", "aus", "off":
		*dst = false
	case "ja", "j", "true", "1", "an", "on":
		*dst = true
	default:
		return Outcome{Err: fmt.Errorf("expected ja or nein, got %q", value)}
	}
	return Outcome{}
}
func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return FormatGermanNumber(*p)
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatBool(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}
