// Package cli holds the terminal presentation of immowert: styled messages,
// result boxes and tables, the spinner, confirmations and Ctrl+C handling.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Adaptive colors keep results readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	success = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	warning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	failure = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	subtle  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	border  = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
)

var (
	// SubtleStyle dims secondary text such as steps of unrequested procedures.
	SubtleStyle = lipgloss.NewStyle().Foreground(subtle)

	// BoldStyle marks labels.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// WarningStyle colors warnings without an icon.
	WarningStyle = lipgloss.NewStyle().Foreground(warning)

	// ResultStyle highlights the value of a feasible procedure.
	ResultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 2)

	// TableHeaderStyle underlines table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(border)

	// TableCellStyle separates table columns.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	successStyle = lipgloss.NewStyle().Foreground(success)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(accent)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
)

// Icons used in box titles.
const (
	MapIcon    = "📍"
	ReportIcon = "📄"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return errorStyle.Render("✗ " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return WarningStyle.Render("⚠ " + message)
}

// FormatInfo renders a neutral notice.
func FormatInfo(message string) string {
	return infoStyle.Render("ℹ " + message)
}

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " ")
}

// RenderBox draws content below title inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
