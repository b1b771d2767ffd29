package report

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#06B6D4")
	colorMuted   = lipgloss.Color("#6B7280")
	colorOK      = lipgloss.Color("#10B981")
	colorWarn    = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	numberCellStyle = cellStyle.
			Align(lipgloss.Right)

	okStyle    = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)
