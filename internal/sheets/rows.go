package sheets

import (
	"github.com/Veraticus/immowert/internal/model"
)

// Column indexes of the numeric cells.
const (
	colErtragswert = 7 + iota
	colUmgekehrt
	colVergleichswert
	colKaufpreis
	colBodenrichtwert
	colFlaeche
)

// Header is the first row of the export.
var Header = []any{
	"ID", "Datum", "Straße", "Hausnummer", "PLZ", "Ort", "Gebäudeklasse",
	"Ertragswert (EUR)", "Umgekehrter Ertragswert (EUR/m²)", "Vergleichswert (EUR)",
	"Kaufpreis (EUR)", "Bodenrichtwert (EUR/m²)", "Grundstücksfläche (m²)",
}

// Rows turns history entries into sheet rows below the header. Infeasible
// procedures and absent inputs leave their cell empty. Dates are written in a
// form Sheets parses as a date with USER_ENTERED input.
func Rows(entries []model.HistoryEntry) [][]any {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, Header)

	for _, e := range entries {
		row := []any{
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Address.Strasse,
			e.Address.Hausnummer,
			e.Address.PLZ,
			e.Address.Ort,
			e.BuildingClass,
		}
		for _, key := range model.ProcedureKeys() {
			outcome, _ := e.Results.Outcome(key)
			if outcome.Durchfuehrbar {
				row = append(row, cell(outcome.Ergebnis))
			} else {
				row = append(row, "")
			}
		}
		in := e.InputSnapshot
		row = append(row, cell(in.KaufpreisOhneNebenkosten), cell(in.Bodenrichtwert), cell(in.Grundstuecksflaeche))
		rows = append(rows, row)
	}
	return rows
}

func cell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
