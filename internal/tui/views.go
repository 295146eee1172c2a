package tui

import (
	"strings"

	"github.com/Veraticus/immowert/internal/form"
	"github.com/charmbracelet/lipgloss"
)

// View renders the form.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	theme := m.config.Theme
	var b strings.Builder

	b.WriteString(theme.Title.Render("Immobilienbewertung"))
	b.WriteString("\n")

	for i, field := range m.fields {
		b.WriteString(m.renderRow(i, field))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if status := m.renderStatus(); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return theme.Box.Render(b.String())
}

func (m Model) renderRow(i int, field form.Field) string {
	theme := m.config.Theme

	value := form.Value(m.req, field)
	rendered := theme.Normal.Render(value)
	if value == "" {
		rendered = theme.Empty.Render("nicht angegeben")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, theme.Label.Render(field.Label()), rendered)
	if i == m.cursor {
		return theme.Selected.Render("▸ " + row)
	}
	return "  " + row
}

func (m Model) renderStatus() string {
	theme := m.config.Theme
	switch {
	case m.lastError != nil:
		return theme.StatusError.Render(m.lastError.Error())
	case m.status != "":
		return theme.StatusWarning.Render(m.status)
	default:
		return ""
	}
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.keymap.ShortHelp()))
	for _, binding := range m.keymap.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.config.Theme.Help.Render(strings.Join(parts, " • "))
}
