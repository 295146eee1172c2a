package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/immowert/internal/format"
	"github.com/Veraticus/immowert/internal/geocode"
	"github.com/Veraticus/immowert/internal/model"
)

// RenderLandValue renders a land-value lookup result.
func RenderLandValue(result model.LandValueResult) string {
	var b strings.Builder
	b.WriteString(ResultStyle.Render(format.Locale(result.Bodenrichtwert) + " €/m²"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Region:"), result.Region)
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Quelle:"), result.Quelle)
	if result.Hinweise != "" {
		fmt.Fprintf(&b, "%s %s", BoldStyle.Render("Hinweise:"), SubtleStyle.Render(result.Hinweise))
	}
	return RenderBox(MapIcon+" Bodenrichtwert", strings.TrimRight(b.String(), "\n"))
}

// RenderValuation renders every procedure of result. Procedures that were not
// requested are dimmed.
func RenderValuation(result model.ValuationResult, req model.ValuationRequest) string {
	blocks := make([]string, 0, len(model.ProcedureKeys()))
	for _, key := range model.ProcedureKeys() {
		outcome, _ := result.Outcome(key)
		blocks = append(blocks, renderOutcome(key, outcome, req.Uses(key)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func renderOutcome(key model.ProcedureKey, outcome model.ProcedureOutcome, requested bool) string {
	var b strings.Builder

	if outcome.Durchfuehrbar && outcome.Ergebnis != nil {
		b.WriteString(ResultStyle.Render(format.Value(*outcome.Ergebnis, outcome.Einheit)))
		b.WriteString("\n")
		for i, step := range outcome.Rechenweg {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
		if outcome.Hinweis != "" {
			b.WriteString("\n\n" + SubtleStyle.Render("Hinweis: "+outcome.Hinweis))
		}
	} else {
		b.WriteString(WarningStyle.Render("Nicht durchführbar"))
		if outcome.Hinweis != "" {
			b.WriteString("\n" + SubtleStyle.Render(outcome.Hinweis))
		}
	}

	title := key.Name()
	if !requested {
		title += " (nicht angefordert)"
		return SubtleStyle.Render(RenderBox(title, b.String()))
	}
	return RenderBox(title, b.String())
}

// RenderHistory renders the history as a table, newest first.
func RenderHistory(entries []model.HistoryEntry) string {
	if len(entries) == 0 {
		return FormatInfo("Noch keine Bewertungen gespeichert.")
	}

	headers := []string{"ID", "Datum", "Adresse", "Gebäudeklasse", "Ergebnisse"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.ID),
			format.DateTime(e.Timestamp.Local()),
			e.Address.String(),
			e.BuildingClass,
			summarize(e.Results),
		})
	}
	return renderTable(headers, rows)
}

// RenderEntry renders one stored valuation with its inputs.
func RenderEntry(e model.HistoryEntry) string {
	header := fmt.Sprintf("%s\n%s",
		BoldStyle.Render(e.Address.String()),
		SubtleStyle.Render(fmt.Sprintf("%s · %s · %s", e.ID, format.DateTime(e.Timestamp.Local()), e.BuildingClass)))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", RenderValuation(e.Results, e.InputSnapshot))
}

// RenderCandidates lists geocoding hits with the address they map to.
func RenderCandidates(candidates []geocode.Candidate) string {
	if len(candidates) == 0 {
		return FormatInfo("Keine Adresse gefunden.")
	}

	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render(fmt.Sprintf("%d.", i+1)), c.DisplayName)
		fmt.Fprintf(&b, "   %s\n", SubtleStyle.Render(c.Address().String()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func summarize(r model.ValuationResult) string {
	var parts []string
	for _, key := range model.ProcedureKeys() {
		outcome, _ := r.Outcome(key)
		if outcome.Durchfuehrbar && outcome.Ergebnis != nil {
			parts = append(parts, format.Value(*outcome.Ergebnis, outcome.Einheit))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	out := []string{line(headers, TableHeaderStyle)}
	for _, row := range rows {
		out = append(out, line(row, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
