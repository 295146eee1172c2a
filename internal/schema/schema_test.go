package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/immowert/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

const validRequest = `{
	"address": {"strasse": "Hauptstraße", "hausnummer": "1", "plz": "10115", "ort": "Berlin"},
	"buildingClass": "Einfamilienhaus",
	"kaufpreisOhneNebenkosten": 500000,
	"urspruenglichesBaujahr": 1995,
	"useVergleichswertverfahren": true
}`

func TestParseValuationRequest_Valid(t *testing.T) {
	v := New(WithClock(fixedClock))

	req, err := v.ParseValuationRequest([]byte(validRequest))
	require.NoError(t, err)

	assert.Equal(t, "10115", req.Address.PLZ)
	assert.Equal(t, model.BuildingClassEinfamilienhaus, req.BuildingClass)
	require.NotNil(t, req.KaufpreisOhneNebenkosten)
	assert.InDelta(t, 500000.0, *req.KaufpreisOhneNebenkosten, 0.001)
	assert.Nil(t, req.Verkehrswert)
	assert.Equal(t, []model.ProcedureKey{model.ProcedureVergleichswert}, req.SelectedProcedures())
}

func TestParseValuationRequest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		kind  Kind
	}{
		{
			name:  "four digit plz",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "1011", "ort": "Berlin"}}`,
			field: "address.plz",
			kind:  KindInvalid,
		},
		{
			name:  "plz with letters",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "1011a", "ort": "Berlin"}}`,
			field: "address.plz",
			kind:  KindInvalid,
		},
		{
			name:  "blank street",
			input: `{"address": {"strasse": "  ", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}}`,
			field: "address.strasse",
			kind:  KindInvalid,
		},
		{
			name:  "negative purchase price",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "kaufpreisOhneNebenkosten": -1}`,
			field: "kaufpreisOhneNebenkosten",
			kind:  KindInvalid,
		},
		{
			name:  "future construction year",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "urspruenglichesBaujahr": 2030}`,
			field: "urspruenglichesBaujahr",
			kind:  KindInvalid,
		},
		{
			name:  "construction year too early",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "fiktivesBaujahrBMF": 1700}`,
			field: "fiktivesBaujahrBMF",
			kind:  KindInvalid,
		},
		{
			name:  "capitalization rate above 100",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "liegenschaftszins": 101}`,
			field: "liegenschaftszins",
			kind:  KindInvalid,
		},
		{
			name:  "unknown building class",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "buildingClass": "Schloss"}`,
			field: "buildingClass",
			kind:  KindInvalid,
		},
		{
			name:  "bad contract date",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "datumKaufvertrag": "31.12.2020"}`,
			field: "datumKaufvertrag",
			kind:  KindInvalid,
		},
		{
			name:  "numerator above denominator",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "miteigentumsanteilZaehler": 3, "miteigentumsanteilNenner": 2}`,
			field: "miteigentumsanteilZaehler",
			kind:  KindInvalid,
		},
		{
			name:  "string where number belongs",
			input: `{"address": {"strasse": "A", "hausnummer": "1", "plz": "10115", "ort": "Berlin"}, "verkehrswert": "viel"}`,
			field: "verkehrswert",
			kind:  KindMalformed,
		},
	}

	v := New(WithClock(fixedClock))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ParseValuationRequest([]byte(tt.input))
			require.Error(t, err)

			var errs *ValidationErrors
			require.ErrorAs(t, err, &errs)
			fieldErr := errs.Field(tt.field)
			require.NotNil(t, fieldErr, "expected error on %s, got %v", tt.field, err)
			assert.Equal(t, tt.kind, fieldErr.Kind)
			assert.NotEmpty(t, fieldErr.Reason)
		})
	}
}

func TestParseValuationRequest_Malformed(t *testing.T) {
	v := New()
	for _, input := range []string{"", "   ", "{", "[1,2]", "not json"} {
		_, err := v.ParseValuationRequest([]byte(input))
		require.Error(t, err, "input %q", input)

		var errs *ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Malformed(), "input %q", input)
	}
}

func TestValidationErrors_ReportsEveryField(t *testing.T) {
	v := New()
	err := v.ValidateAddress(model.Address{PLZ: "abc"})
	require.Error(t, err)

	var errs *ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs.Errors, 4)
	assert.NotNil(t, errs.Field("address.plz"))
	assert.NotNil(t, errs.Field("address.ort"))

	var single *ValidationError
	require.ErrorAs(t, err, &single)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestRequireProcedure(t *testing.T) {
	err := RequireProcedure(model.ValuationRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProcedureSelected)

	var errs *ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.NotNil(t, errs.Field("procedures"))

	assert.NoError(t, RequireProcedure(model.ValuationRequest{UseErtragswertverfahren: true}))
}

func TestParseLandValueQuery(t *testing.T) {
	v := New()

	query, err := v.ParseLandValueQuery([]byte(`{"address": {"strasse": "Marienplatz", "hausnummer": "8", "plz": "80331", "ort": "München"}, "verkehrswert": 750000}`))
	require.NoError(t, err)
	assert.Equal(t, "München", query.Address.Ort)
	require.NotNil(t, query.Verkehrswert)

	_, err = v.ParseLandValueQuery([]byte(`{"address": {"strasse": "Marienplatz", "hausnummer": "8", "plz": "8033", "ort": "München"}}`))
	var errs *ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.NotNil(t, errs.Field("address.plz"))
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	v := New()

	query, err := v.ParseLandValueQuery([]byte(`{"address": {"strasse": "Marienplatz", "hausnummer": "8", "plz": "80331", "ort": "München"}, "verkehrswertAktiv": true, "useErtragswertverfahren": true}`))
	require.NoError(t, err)
	assert.Equal(t, "80331", query.Address.PLZ)
	assert.Nil(t, query.Verkehrswert)

	_, err = v.ParseLandValueQuery([]byte(`{"address": {"strasse": "Marienplatz", "hausnummer": 8, "plz": "80331", "ort": "München"}}`))
	var errs *ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Malformed())
}

func TestNormalizeYAML(t *testing.T) {
	raw := []byte(`
address:
  strasse: Hauptstraße
  hausnummer: "1"
  plz: "10115"
  ort: Berlin
kaufpreisOhneNebenkosten: 320000
useErtragswertverfahren: true
`)
	normalized, err := NormalizeYAML(raw)
	require.NoError(t, err)

	req, err := New(WithClock(fixedClock)).ParseValuationRequest(normalized)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", req.Address.Ort)
	assert.True(t, req.UseErtragswertverfahren)

	_, err = NormalizeYAML([]byte("address: [unclosed"))
	var errs *ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.True(t, errs.Malformed())
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	_, err = ParseDate("2024-02-30")
	require.Error(t, err)
	_, err = ParseDate("2024-01-15T10:00:00Z")
	require.NoError(t, err)
}
