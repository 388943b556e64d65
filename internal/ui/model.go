// ABOUTME: Bubbletea model for the demo player TUI
// ABOUTME: Defines playback state display and transport key handling
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emmef/pcmsink/internal/app"
)

// Controls is the transport surface the TUI drives.
type Controls interface {
	TogglePause()
	Seek(deltaMs int)
	VolumeStep(delta int)
}

// StatusMsg carries a playback snapshot into the TUI.
type StatusMsg struct {
	app.Status
}

// Model represents the TUI state.
type Model struct {
	status app.Status
	ctrl   Controls

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(ctrl Controls) Model {
	return Model{ctrl: ctrl}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.status = msg.Status
		if m.status.Done {
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.ctrl != nil {
			m.ctrl.TogglePause()
		}
	case "left":
		if m.ctrl != nil {
			m.ctrl.Seek(-5000)
		}
	case "right":
		if m.ctrl != nil {
			m.ctrl.Seek(5000)
		}
	case "+", "=", "up":
		if m.ctrl != nil {
			m.ctrl.VolumeStep(5)
		}
	case "-", "down":
		if m.ctrl != nil {
			m.ctrl.VolumeStep(-5)
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderPosition()
	s += m.renderControls()
	s += m.renderHelp()
	return s
}

// renderHeader renders the file and stream format.
func (m Model) renderHeader() string {
	name := "(no file)"
	if m.status.File != "" {
		name = filepath.Base(m.status.File)
	}
	format := ""
	if m.status.Rate > 0 {
		format = fmt.Sprintf("%d Hz %s S16LE", m.status.Rate, channelName(m.status.Channels))
	}

	return fmt.Sprintf(`┌─ pcmsink player ─────────────────────────────────────┐
│ File:   %-45s│
│ Format: %-45s│
├──────────────────────────────────────────────────────┤
`, truncate(name, 45), format)
}

// renderPosition renders the playback clock and progress.
func (m Model) renderPosition() string {
	state := "playing"
	if m.status.Paused {
		state = "paused"
	}
	bar := renderBar(m.status.ElapsedMs, m.status.TotalMs, 30)
	return fmt.Sprintf("│ [%s] %s / %s %-8s│\n",
		bar, formatMs(m.status.ElapsedMs), formatMs(m.status.TotalMs), state)
}

// renderControls renders volume and buffer fill.
func (m Model) renderControls() string {
	volume := m.status.VolumeL
	if m.status.VolumeR > volume {
		volume = m.status.VolumeR
	}
	queued := m.status.BufferCap - m.status.BufferFree
	fill := 0
	if m.status.BufferCap > 0 {
		fill = queued * 100 / m.status.BufferCap
	}
	return fmt.Sprintf("│ Volume: [%s] %3d%%  Buffer: %3d%%%-12s│\n",
		renderBar(volume, 100, 10), volume, fill, "")
}

// renderHelp renders keyboard shortcuts.
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Pause  ←/→:Seek  +/-:Volume  q:Quit            │
└──────────────────────────────────────────────────────┘
`
}

// renderBar renders a progress bar of the given width.
func renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	filled := value * width / max
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatMs(ms int) string {
	return fmt.Sprintf("%d:%02d", ms/60000, ms%60000/1000)
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
