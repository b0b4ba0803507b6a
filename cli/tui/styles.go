// Package tui provides Bubble Tea components for the pulseview CLI.
//
// Two surfaces exist: an interactive view browser driven by the
// orchestrator, and a static/interactive session stats display. Both are
// read-only rendering collaborators; all state lives below them.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for the displaying phase.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// WarningStyle for the fetching phase.
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for the errored phase.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// ChartStyle for series sparklines.
	ChartStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// StatBoxStyle for stat display boxes.
	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)

	// StatLabelStyle for stat labels.
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Align(lipgloss.Center)

	// StatValueStyle for stat values.
	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Align(lipgloss.Center)
)

// PhaseStyle returns a style based on the orchestrator phase name.
func PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "displaying", "idle":
		return SuccessStyle
	case "fetching":
		return WarningStyle
	case "errored":
		return ErrorStyle
	default:
		return ValueStyle
	}
}
