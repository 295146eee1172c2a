package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/immowert/internal/model"
)

func sampleEntry() model.HistoryEntry {
	return model.HistoryEntry{
		ID:            "e1",
		Address:       model.Address{Strasse: "Invalidenstraße", Hausnummer: "117", PLZ: "10115", Ort: "Berlin"},
		BuildingClass: "Einfamilienhaus",
		InputSnapshot: model.ValuationRequest{
			Address:                  model.Address{Strasse: "Invalidenstraße", Hausnummer: "117", PLZ: "10115", Ort: "Berlin"},
			BuildingClass:            model.BuildingClassEinfamilienhaus,
			KaufpreisOhneNebenkosten: model.Float(400000),
			Verkehrswert:             model.Float(999999),
			DatumKaufvertrag:         model.String("2024-05-17"),
			Liegenschaftszins:        model.Float(3.5),
			LiegenschaftszinsAktiv:   true,
			Bodenrichtwert:           model.Float(350),
			Grundstuecksflaeche:      model.Float(500),
		},
		Results: model.ValuationResult{
			Ertragswertverfahren: model.ProcedureOutcome{
				Durchfuehrbar: true,
				Rechenweg:     []string{"Bodenwert: 175.000 €", "Ertragswert: 420.000 €"},
				Ergebnis:      model.Float(420000),
				Einheit:       model.UnitEUR,
				Hinweis:       "Liegenschaftszins geschätzt",
			},
			UmgekehrtesErtragswertverfahren: model.ProcedureOutcome{
				Rechenweg: []string{},
				Einheit:   model.UnitEURPerSquareMeter,
				Hinweis:   "Grundstücksfläche fehlt",
			},
			Vergleichswertverfahren: model.ProcedureOutcome{Rechenweg: []string{}, Einheit: model.UnitEUR},
		},
	}
}

func render(t *testing.T, key model.ProcedureKey) string {
	t.Helper()
	r, err := NewMarkdownRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, Request{
		Entry:     sampleEntry(),
		Procedure: key,
		Created:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return buf.String()
}

func TestRenderFeasibleProcedure(t *testing.T) {
	out := render(t, model.ProcedureErtragswert)

	for _, want := range []string{
		"## Ertragswertverfahren",
		"Erstellt am: 01.03.2025",
		"Objekt: Invalidenstraße 117, 10115 Berlin",
		"### Eingabedaten",
		"- Gebäudeklasse: Einfamilienhaus",
		"- Kaufpreis ohne NK: 400.000 €",
		"- Datum Kaufvertrag: 17.05.2024",
		"- Liegenschaftszins: 3,5%",
		"- Bodenrichtwert: 350 EUR/m²",
		"### Rechenweg",
		"1. Bodenwert: 175.000 €",
		"2. Ertragswert: 420.000 €",
		"### Ergebnis",
		"**420.000 €**",
		"_Hinweis: Liegenschaftszins geschätzt_",
		Footer,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Verkehrswert", "inactive market value must not be listed")
	assert.NotContains(t, out, "\n\n\n")
}

func TestRenderInfeasibleProcedure(t *testing.T) {
	out := render(t, model.ProcedureUmgekehrtesErtragswert)

	assert.Contains(t, out, "Verfahren nicht durchführbar")
	assert.Contains(t, out, "Grund: Grundstücksfläche fehlt")
	assert.NotContains(t, out, "### Rechenweg")
}

func TestRenderCombined(t *testing.T) {
	out := render(t, "")

	assert.Contains(t, out, "## Gesamtbericht - Alle Verfahren")
	assert.Contains(t, out, "**Ergebnis: 420.000 €**")
	assert.Equal(t, 2, strings.Count(out, "_Nicht durchführbar_"))
	ertrag := strings.Index(out, "### Ertragswertverfahren")
	umgekehrt := strings.Index(out, "### Umgekehrtes Ertragswertverfahren")
	vergleich := strings.Index(out, "### Vergleichswertverfahren")
	assert.True(t, ertrag < umgekehrt && umgekehrt < vergleich)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), Footer))
}

func TestRenderUnknownProcedure(t *testing.T) {
	r, err := NewMarkdownRenderer()
	require.NoError(t, err)
	err = r.Render(&bytes.Buffer{}, Request{Entry: sampleEntry(), Procedure: "sachwertverfahren"})
	require.Error(t, err)
}

func TestInputsEmpty(t *testing.T) {
	assert.Empty(t, Inputs(model.ValuationRequest{}))
}

func TestFileName(t *testing.T) {
	entry := sampleEntry()
	assert.Equal(t, "Umgekehrtes_Ertragswertverfahren_10115_Berlin.md",
		FileName(entry, model.ProcedureUmgekehrtesErtragswert, ".md"))
	assert.Equal(t, "Immobilienbewertung_10115_Berlin_Gesamt.md", FileName(entry, "", ".md"))
}

func TestFileNameStaysInDirectory(t *testing.T) {
	tests := []struct {
		name string
		ort  string
		want string
	}{
		{name: "slash in city", ort: "Halle/Saale", want: "Immobilienbewertung_10115_Halle_Saale_Gesamt.md"},
		{name: "backslash", ort: `Mülheim\Ruhr`, want: "Immobilienbewertung_10115_Mülheim_Ruhr_Gesamt.md"},
		{name: "parent reference", ort: "../x", want: "Immobilienbewertung_10115___x_Gesamt.md"},
		{name: "spaces", ort: "Frankfurt am Main", want: "Immobilienbewertung_10115_Frankfurt_am_Main_Gesamt.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := sampleEntry()
			entry.Address.Ort = tt.ort

			got := FileName(entry, "", ".md")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, filepath.Base(got))

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, got), []byte("x"), 0o600))
		})
	}
}
