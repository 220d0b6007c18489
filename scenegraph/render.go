package scenegraph

import (
	"maps"
	"slices"
)

// SceneView is one scene ready to draw.
type SceneView[V any] struct {
	Scene  Scene // Logical
	Scaled Scene // Screen space
	Header V
	Body   V
}

// ConnectionView is one connection ready to draw, in screen space.
type ConnectionView struct {
	Connection       Connection // Start anchor already transformed
	EndingScene      Scene      // Transformed target scene
	EndingVertOffset float64
	Start            Point
	End              Point
}

// Preview is the line of an in-progress connection drag.
type Preview struct {
	From     Point
	To       Point
	Target   string
	Targeted bool
}

// Frame is everything a host needs to draw one render.
type Frame[V any] struct {
	Width  float64
	Height float64
	Scale  float64

	Scenes      []SceneView[V] // Ordered by id; the dragged scene is left out
	Connections []ConnectionView

	// Ghost is the dragged scene at its live position.
	Ghost *SceneView[V]

	Preview *Preview
}

// Render derives the frame for data and the current transient state.
func (c *Container[V]) Render(data Data) Frame[V] {
	v := data.Viewport
	w, h := v.ScreenSize()
	f := Frame[V]{Width: w, Height: h, Scale: v.Scale}

	for _, id := range slices.Sorted(maps.Keys(data.Scenes)) {
		if c.scene.ID != "" && id == c.scene.ID {
			continue
		}
		f.Scenes = append(f.Scenes, c.sceneView(data.Scenes[id], v, Point{}))
	}

	if c.sceneState == StateSceneDragging {
		if s, ok := data.Scenes[c.scene.ID]; ok {
			ghost := c.sceneView(s, v, c.sceneDelta)
			f.Ghost = &ghost
		}
	}

	if c.cfg.ShowConnections {
		f.Connections = c.connectionViews(data)
	}

	f.Preview = c.preview(data)
	return f
}

func (c *Container[V]) sceneView(s Scene, v Viewport, offset Point) SceneView[V] {
	scaled := TransformScene(s, v)
	scaled.X += offset.X
	scaled.Y += offset.Y
	return SceneView[V]{
		Scene:  s,
		Scaled: scaled,
		Header: c.cfg.RenderSceneHeader(s),
		Body:   c.cfg.RenderScene(s),
	}
}

func (c *Container[V]) connectionViews(data Data) []ConnectionView {
	v := data.Viewport
	visible := VisibleConnections(data.Connections, c.scene.ID, c.connection.ID)
	out := make([]ConnectionView, 0, len(visible))
	for _, conn := range visible {
		_, fromOK := data.Scenes[conn.From]
		to, toOK := data.Scenes[conn.To]
		if !fromOK || !toOK {
			c.log.Debug("skipping dangling connection", "connection", conn.ID, "from", conn.From, "to", conn.To)
			continue
		}
		toScaled := TransformScene(to, v)
		offset := EndingVertOffset(conn, to, data.Connections)
		scaled := ScaledConnection(conn, v)
		out = append(out, ConnectionView{
			Connection:       scaled,
			EndingScene:      toScaled,
			EndingVertOffset: offset,
			Start:            scaled.Start(),
			End:              EndingPoint(toScaled, offset),
		})
	}
	return out
}

func (c *Container[V]) preview(data Data) *Preview {
	if c.connState == StateIdle {
		return nil
	}
	p := &Preview{
		From:     c.pointer,
		To:       c.pointer,
		Target:   c.target,
		Targeted: c.connState == StateConnectionTargeted,
	}
	switch c.connKind {
	case KindConnectionStart:
		// The start follows the pointer; the end stays on its scene.
		if to, ok := data.Scenes[c.connection.To]; ok {
			toScaled := TransformScene(to, data.Viewport)
			p.To = EndingPoint(toScaled, EndingVertOffset(c.connection, to, data.Connections))
		}
	default:
		if c.origin != nil {
			p.From = *c.origin
		}
	}
	return p
}
