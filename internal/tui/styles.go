// Package tui renders a coordinator-driven list as an interactive terminal
// table.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
//
//nolint:gochecknoglobals // Read-only palette.
var (
	ColorTitle    = lipgloss.Color("63")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("252")
	ColorError    = lipgloss.Color("196")
	ColorSelected = lipgloss.Color("229")
	ColorSelectBg = lipgloss.Color("57")
	ColorBorder   = lipgloss.Color("240")
)

// Shared styles.
//
//nolint:gochecknoglobals // Read-only styles.
var (
	titleStyle = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(ColorLabel)
	valueStyle = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorLabel).Faint(true)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorSelected).
		Background(ColorSelectBg).
		Bold(false)
	return s
}
