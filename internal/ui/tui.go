// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the demo player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI over the given transport controls.
func Run(ctrl Controls) *tea.Program {
	return tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
}
