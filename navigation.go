package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"scenegraph/scenegraph"
)

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if m.mode == ModeHelp {
		switch key {
		case "?", "esc", "q":
			m.mode = ModeNormal
		}
		return nil
	}

	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "?":
		m.mode = ModeHelp
	case "esc":
		m.cancelDrag()
	case "h", "left", "l", "right", "k", "up", "j", "down",
		"H", "shift+left", "L", "shift+right", "K", "shift+up", "J", "shift+down":
		m.handlePan(key, m.getMoveSpeed(key))
	case "+", "=":
		m.zoomBy(m.config.ZoomStep)
	case "-", "_":
		m.zoomBy(1 / m.config.ZoomStep)
	case "0":
		m.container.ZoomTo(m.board.data, 1)
	case "c":
		m.container.SetShowConnections(!m.container.ShowConnections())
	case "p":
		m.exportPNG()
	case "t":
		m.exportText()
	case "y":
		m.copyToClipboard()
	}
	return nil
}

// handlePan moves the view, not the cursor: "left" reveals what is left of
// the screen, so content shifts right.
func (m *model) handlePan(key string, speed int) {
	step := float64(panStep * speed)
	var d scenegraph.Point
	switch key {
	case "h", "left", "H", "shift+left":
		d.X = step
	case "l", "right", "L", "shift+right":
		d.X = -step
	case "k", "up", "K", "shift+up":
		d.Y = step
	case "j", "down", "J", "shift+down":
		d.Y = -step
	}
	m.container.PanBy(m.board.data, d)
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// zoomBy zooms within the configured bounds. The core never clamps.
func (m *model) zoomBy(factor float64) {
	current := m.board.data.Viewport.Scale
	next := clamp(current*factor, m.config.MinScale, m.config.MaxScale)
	if next == current {
		return
	}
	m.container.ZoomTo(m.board.data, next)
}
