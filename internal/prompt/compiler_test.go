package prompt

import (
	"testing"

	"github.com/Veraticus/immowert/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := NewCompiler()
	require.NoError(t, err)
	return c
}

func scenarioRequest() model.ValuationRequest {
	return model.ValuationRequest{
		Address: model.Address{
			Strasse:    "Lindenallee",
			Hausnummer: "12",
			PLZ:        "50968",
			Ort:        "Köln",
		},
		BuildingClass:           model.BuildingClassEinfamilienhaus,
		Bodenrichtwert:          model.Float(350),
		Grundstuecksflaeche:     model.Float(500),
		UseErtragswertverfahren: true,
	}
}

func TestCompileValuation(t *testing.T) {
	c := newTestCompiler(t)

	p, err := c.CompileValuation(scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, OpMultiProcedureValuation, p.Operation)

	for _, key := range model.ProcedureKeys() {
		assert.Contains(t, p.System, `"`+string(key)+`"`)
	}
	assert.Contains(t, p.System, `"einheit": "EUR/m²"`)
	assert.Contains(t, p.System, "ImmoWertV")
	assert.Contains(t, p.System, "ausschließlich JSON")

	assert.Contains(t, p.User, "- Ertragswertverfahren: JA")
	assert.Contains(t, p.User, "- Umgekehrtes Ertragswertverfahren: NEIN")
	assert.Contains(t, p.User, "- Vergleichswertverfahren: NEIN")
	assert.Contains(t, p.User, `"bodenrichtwert": 350`)
	assert.Contains(t, p.User, `"grundstuecksflaeche": 500`)
	assert.Contains(t, p.User, `"plz": "50968"`)
}

func TestCompileValuation_OmitsAbsentFacts(t *testing.T) {
	c := newTestCompiler(t)

	req := scenarioRequest()
	req.BuildingClass = ""
	p, err := c.CompileValuation(req)
	require.NoError(t, err)

	for _, absent := range []string{
		`"verkehrswert":`,
		`"kaufpreisOhneNebenkosten":`,
		`"liegenschaftszins":`,
		`"datumKaufvertrag":`,
		`"buildingClass":`,
	} {
		assert.NotContains(t, p.User, absent)
	}
	assert.NotContains(t, p.User, "null")
}

func TestCompile_Deterministic(t *testing.T) {
	c := newTestCompiler(t)
	req := scenarioRequest()
	req.Verkehrswert = model.Float(612345.5)
	req.VerkehrswertAktiv = true
	req.DatumKaufvertrag = model.String("2020-05-01")

	for _, op := range []Operation{OpLandValueLookup, OpMultiProcedureValuation} {
		first, err := c.Compile(op, req)
		require.NoError(t, err)
		for range 5 {
			again, err := c.Compile(op, req)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestCompileLandValue(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		name     string
		query    model.LandValueQuery
		contains []string
		absent   []string
	}{
		{
			name: "address only",
			query: model.LandValueQuery{
				Address: model.Address{Strasse: "Marienplatz", Hausnummer: "8", PLZ: "80331", Ort: "München"},
			},
			contains: []string{"ADRESSE: Marienplatz 8, 80331 München"},
			absent:   []string{"GEBÄUDEKLASSE", "VERKEHRSWERT"},
		},
		{
			name: "with class and market value",
			query: model.LandValueQuery{
				Address:       model.Address{Strasse: "Marienplatz", Hausnummer: "8", PLZ: "80331", Ort: "München"},
				BuildingClass: model.BuildingClassMehrfamilienhaus,
				Verkehrswert:  model.Float(750000),
			},
			contains: []string{
				"GEBÄUDEKLASSE: Mehrfamilienhaus",
				"VERKEHRSWERT (zur Orientierung): 750.000 EUR",
			},
		},
		{
			name: "zero market value is not a hint",
			query: model.LandValueQuery{
				Address:      model.Address{Strasse: "A", Hausnummer: "1", PLZ: "10115", Ort: "Berlin"},
				Verkehrswert: model.Float(0),
			},
			absent: []string{"VERKEHRSWERT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.CompileLandValue(tt.query)
			require.NoError(t, err)
			assert.Equal(t, OpLandValueLookup, p.Operation)
			assert.Contains(t, p.System, "BORIS NRW: https://www.boris.nrw.de/")
			assert.Contains(t, p.System, "Schätzung")
			for _, s := range tt.contains {
				assert.Contains(t, p.User, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, p.User, s)
			}
		})
	}
}

func TestCompile_LandValueUsesActiveMarketValueOnly(t *testing.T) {
	c := newTestCompiler(t)
	req := scenarioRequest()
	req.Verkehrswert = model.Float(480000)

	p, err := c.Compile(OpLandValueLookup, req)
	require.NoError(t, err)
	assert.NotContains(t, p.User, "VERKEHRSWERT")

	req.VerkehrswertAktiv = true
	p, err = c.Compile(OpLandValueLookup, req)
	require.NoError(t, err)
	assert.Contains(t, p.User, "480.000 EUR")
}

func TestCompile_UnknownOperation(t *testing.T) {
	_, err := newTestCompiler(t).Compile(Operation(42), scenarioRequest())
	require.Error(t, err)
}

func TestOperationCallOptions(t *testing.T) {
	land := OpLandValueLookup.CallOptions()
	assert.InDelta(t, 0.3, land.Temperature, 1e-9)
	assert.Equal(t, 2048, land.MaxTokens)
	assert.True(t, land.WebSearch)

	valuation := OpMultiProcedureValuation.CallOptions()
	assert.InDelta(t, 0.3, valuation.Temperature, 1e-9)
	assert.Equal(t, 4096, valuation.MaxTokens)
	assert.False(t, valuation.WebSearch)
	assert.Equal(t, "multi_procedure_valuation", valuation.Operation)
}
