package main

import (
	"fmt"
	"log/slog"
	"strings"

	"scenegraph/scenegraph"
)

// Board owns the persistent graph snapshot. The container never writes to
// it directly; every mutation arrives through apply.
type Board struct {
	data    scenegraph.Data
	titles  map[string]string
	message string
}

func newBoard(config *Config) *Board {
	b := &Board{
		data: scenegraph.Data{
			Scenes:      make(map[string]scenegraph.Scene, len(config.Scenes)),
			Connections: make(map[string]scenegraph.Connection),
			Viewport:    scenegraph.Viewport{Width: 80, Height: 23, Scale: 1},
		},
		titles: make(map[string]string, len(config.Scenes)),
	}
	for _, s := range config.Scenes {
		b.data.Scenes[s.ID] = scenegraph.Scene{ID: s.ID, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
		b.titles[s.ID] = s.Title
	}
	return b
}

func (b *Board) apply(c scenegraph.Change) {
	b.data = c.Apply(b.data)
}

// resize keeps the viewport's screen extent equal to the terminal area.
func (b *Board) resize(cols, rows int) {
	v := &b.data.Viewport
	v.Width = float64(cols) / v.Scale
	v.Height = float64(rows) / v.Scale
}

func (b *Board) title(id string) string {
	if t := b.titles[id]; t != "" {
		return t
	}
	return id
}

func (b *Board) renderSceneHeader(s scenegraph.Scene) string {
	return b.title(s.ID)
}

func (b *Board) renderScene(s scenegraph.Scene) string {
	lines := []string{
		fmt.Sprintf("x %.0f y %.0f", s.X, s.Y),
	}
	in, out := 0, 0
	for _, c := range b.data.Connections {
		if c.To == s.ID {
			in++
		}
		if c.From == s.ID {
			out++
		}
	}
	lines = append(lines, fmt.Sprintf("in %d out %d", in, out))
	return strings.Join(lines, "\n")
}

// dragSession is the mouse drag in progress, in screen cells.
type dragSession struct {
	kind   scenegraph.DragKind
	startX int
	startY int
}

type model struct {
	width          int
	height         int
	mode           Mode
	config         *Config
	log            *slog.Logger
	board          *Board
	container      *scenegraph.Container[string]
	drag           *dragSession
	errorMessage   string
	successMessage string
}

func newContainer(b *Board, config *Config, log *slog.Logger) (*scenegraph.Container[string], error) {
	return scenegraph.NewContainer(scenegraph.Config[string]{
		OnChange: b.apply,
		// Presses are whole cells but a zoomed corner is not: a press in the
		// cell holding the body corner lands up to one cell above or left
		// of it and snaps onto the edge.
		OnDragConnectionStart: func(_ scenegraph.Scene, rel scenegraph.Point) (scenegraph.Point, bool) {
			if rel.X <= -1 || rel.Y <= -1 {
				return scenegraph.Point{}, false
			}
			return scenegraph.Point{X: max(rel.X, 0), Y: max(rel.Y, 0)}, true
		},
		OnDragSceneEnd: func(s scenegraph.Scene, d scenegraph.Point) {
			log.Info("scene moved", "scene", s.ID, "dx", d.X, "dy", d.Y)
		},
		OnTargetlessConnectionDrop: func(c scenegraph.Connection) {
			if c.ID == "" {
				b.message = "connection discarded"
				return
			}
			conns := make(map[string]scenegraph.Connection, len(b.data.Connections))
			for id, conn := range b.data.Connections {
				if id != c.ID {
					conns[id] = conn
				}
			}
			b.apply(scenegraph.Change{Connections: conns})
			b.message = "connection removed"
			log.Info("connection removed", "connection", c.ID)
		},
		RenderScene:       b.renderScene,
		RenderSceneHeader: b.renderSceneHeader,
		ShowConnections:   config.ShowConnections,
		Logger:            log,
	})
}

func initialModel(config *Config, log *slog.Logger) (model, error) {
	board := newBoard(config)
	container, err := newContainer(board, config, log)
	if err != nil {
		return model{}, err
	}
	return model{
		width:     80,
		height:    24,
		mode:      ModeNormal,
		config:    config,
		log:       log,
		board:     board,
		container: container,
	}, nil
}
