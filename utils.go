package main

import (
	"fmt"

	"scenegraph/scenegraph"
)

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// canvasSize is the terminal area left for the board, above the status line.
func (m *model) canvasSize() (int, int) {
	return max(m.width, 1), max(m.height-1, 1)
}

func (m *model) frame() scenegraph.Frame[string] {
	return m.container.Render(m.board.data)
}

// measureHeader feeds the header height of the rendered scenes back into
// the container, which uses it to place connection anchors.
func (m *model) measureHeader() {
	if h, ok := headerRows(m.frame()); ok {
		m.container.HandleSceneHeaderRef(h)
	}
}

func (m *model) renderCanvas() *Canvas {
	w, h := m.canvasSize()
	return renderFrame(m.frame(), w, h)
}

func (m *model) takeBoardMessage() {
	if m.board.message != "" {
		m.successMessage = m.board.message
		m.board.message = ""
	}
}

func (m *model) exportPNG() {
	path := m.config.GetSavePath("scenegraph.png")
	if err := exportPNG(m.frame(), path); err != nil {
		m.errorMessage = fmt.Sprintf("PNG export failed: %v", err)
		m.log.Error("png export failed", "error", err)
		return
	}
	m.successMessage = "Exported " + path
}

func (m *model) exportText() {
	path := m.config.GetSavePath("scenegraph.txt")
	if err := exportText(m.renderCanvas(), path); err != nil {
		m.errorMessage = fmt.Sprintf("Text export failed: %v", err)
		m.log.Error("text export failed", "error", err)
		return
	}
	m.successMessage = "Exported " + path
}

func (m *model) copyToClipboard() {
	if err := copyToClipboard(m.renderCanvas()); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
		m.log.Warn("clipboard write failed", "error", err)
		return
	}
	m.successMessage = "Copied board to clipboard"
}
