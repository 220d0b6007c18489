// Package scenegraph contains the geometry and interaction core of an
// interactive node graph: scenes connected by directional connections,
// viewed through a pannable, zoomable viewport.
//
// The caller owns the persistent data (scenes, connections, viewport) and
// hands a snapshot to the core on every event and every render. The core
// reports the mutations it wants through hooks instead of applying them.
package scenegraph

import "maps"

// Point is a 2D coordinate, in logical or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scene is a positioned, sized node of the graph.
type Scene struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position returns the top-left corner of the scene.
func (s Scene) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// Contains reports whether p lies inside the scene's rectangle.
func (s Scene) Contains(p Point) bool {
	return p.X >= s.X && p.X < s.X+s.Width &&
		p.Y >= s.Y && p.Y < s.Y+s.Height
}

// Connection is a directed edge between two scenes. Its start anchor is
// independent of the source scene.
type Connection struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
}

// Start returns the connection's start anchor.
func (c Connection) Start() Point {
	return Point{X: c.StartX, Y: c.StartY}
}

// Viewport is the logical window through which the graph is viewed.
// Width and Height are logical extents; Scale must be > 0.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// ScreenSize returns the viewport's extent in screen units.
func (v Viewport) ScreenSize() (width, height float64) {
	return v.Width * v.Scale, v.Height * v.Scale
}

// Data is one snapshot of the caller's persistent state.
type Data struct {
	Scenes      map[string]Scene      `json:"scenes"`
	Connections map[string]Connection `json:"connections"`
	Viewport    Viewport              `json:"viewport"`
}

// Clone returns a copy of d whose maps can be modified freely.
func (d Data) Clone() Data {
	return Data{
		Scenes:      cloneMap(d.Scenes),
		Connections: cloneMap(d.Connections),
		Viewport:    d.Viewport,
	}
}

// Change is a partial state update emitted through Config.OnChange.
// A nil field is unchanged; a non-nil map replaces the caller's map.
type Change struct {
	Scenes      map[string]Scene
	Connections map[string]Connection
	Viewport    *Viewport
}

// Apply merges c into d and returns the result. d is not modified.
func (c Change) Apply(d Data) Data {
	out := d
	if c.Scenes != nil {
		out.Scenes = c.Scenes
	}
	if c.Connections != nil {
		out.Connections = c.Connections
	}
	if c.Viewport != nil {
		out.Viewport = *c.Viewport
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return make(map[K]V)
	}
	return maps.Clone(m)
}
