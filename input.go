package main

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"scenegraph/scenegraph"
)

// handleMouse turns terminal mouse reports into drag events for the
// container. Deltas are measured from the press position.
func (m *model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.zoomBy(m.config.ZoomStep)
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.zoomBy(1 / m.config.ZoomStep)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.startDrag(msg.X, msg.Y)
	case msg.Action == tea.MouseActionMotion:
		if m.drag == nil {
			return
		}
		delta, target := m.dragDelta(msg.X, msg.Y)
		m.container.Handle(m.board.data, scenegraph.DragMove(m.drag.kind, delta, target))
	case msg.Action == tea.MouseActionRelease:
		if m.drag == nil {
			return
		}
		delta, target := m.dragDelta(msg.X, msg.Y)
		kind := m.drag.kind
		m.drag = nil
		m.container.Handle(m.board.data, scenegraph.Drop(kind, delta, target))
		m.container.Handle(m.board.data, scenegraph.DragEnd(kind, delta))
		m.takeBoardMessage()
	}
}

func (m *model) startDrag(x, y int) {
	if m.drag != nil {
		m.cancelDrag()
	}
	frame := m.container.Render(m.board.data)
	target, id := m.classify(frame, x, y)

	var kind scenegraph.DragKind
	switch target {
	case pressSceneHeader:
		kind = scenegraph.KindScene
	case pressSceneBody:
		kind = scenegraph.KindConnectionHandle
	case pressConnectionEnd:
		kind = scenegraph.KindConnection
	case pressConnectionStart:
		kind = scenegraph.KindConnectionStart
	default:
		kind = scenegraph.KindPan
	}

	m.drag = &dragSession{kind: kind, startX: x, startY: y}
	m.container.Handle(m.board.data, scenegraph.DragStart(kind, id, screenPoint(x, y)))
	m.log.Debug("drag started", "kind", kind, "id", id, "x", x, "y", y)
}

// cancelDrag abandons the active drag. The board is left as it was.
func (m *model) cancelDrag() {
	if m.drag == nil {
		return
	}
	kind := m.drag.kind
	m.drag = nil
	m.container.Handle(m.board.data, scenegraph.Cancel(kind))
}

func (m *model) dragDelta(x, y int) (scenegraph.Point, string) {
	delta := scenegraph.Point{X: float64(x - m.drag.startX), Y: float64(y - m.drag.startY)}
	var target string
	if s, ok := m.container.SceneAt(m.board.data, screenPoint(x, y)); ok {
		target = s.ID
	}
	return delta, target
}

// classify finds what lies under a press. Connection anchors win over the
// scenes they sit on.
func (m *model) classify(f scenegraph.Frame[string], x, y int) (pressTarget, string) {
	for i := len(f.Connections) - 1; i >= 0; i-- {
		cv := f.Connections[i]
		ex, ey := cell(cv.End)
		if y == ey && (x == ex-1 || x == ex) {
			return pressConnectionEnd, cv.Connection.ID
		}
		sx, sy := cell(cv.Start)
		if x == sx && y == sy {
			return pressConnectionStart, cv.Connection.ID
		}
	}

	s, ok := m.container.SceneAt(m.board.data, screenPoint(x, y))
	if !ok {
		return pressBackground, ""
	}
	top := int(math.Floor(scenegraph.TransformScene(s, m.board.data.Viewport).Y))
	if float64(y-top) < m.container.State().SceneHeaderHeight {
		return pressSceneHeader, s.ID
	}
	return pressSceneBody, s.ID
}

func screenPoint(x, y int) scenegraph.Point {
	return scenegraph.Point{X: float64(x), Y: float64(y)}
}
