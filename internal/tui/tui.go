// Package tui is the interactive terminal front end.
package tui

import (
	"gigtrack-cli/internal/tracker"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// ExportDir is where `E` writes CSV files.
	ExportDir string
}

func Run(ctrl *tracker.Controller, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	m := newModel(ctrl, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
