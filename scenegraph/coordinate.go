package scenegraph

// TransformPoint maps a logical point into screen space. The logical origin
// sits at the centre of the viewport; pan is applied before scale.
func TransformPoint(p Point, v Viewport) Point {
	return Point{
		X: v.Scale * (p.X + v.X + v.Width/2),
		Y: v.Scale * (p.Y + v.Y + v.Height/2),
	}
}

// InverseTransformPoint maps a screen point back into logical space.
// v.Scale must be non-zero.
func InverseTransformPoint(p Point, v Viewport) Point {
	return Point{
		X: p.X/v.Scale - v.X - v.Width/2,
		Y: p.Y/v.Scale - v.Y - v.Height/2,
	}
}

// InverseTransformDelta converts a screen-space displacement into logical
// units. Deltas are not translated, only unscaled.
func InverseTransformDelta(d Point, v Viewport) Point {
	return Point{X: d.X / v.Scale, Y: d.Y / v.Scale}
}

// TransformScene returns the scene in screen space: its corner goes through
// TransformPoint and its size is multiplied by the scale.
func TransformScene(s Scene, v Viewport) Scene {
	p := TransformPoint(s.Position(), v)
	s.X, s.Y = p.X, p.Y
	s.Width *= v.Scale
	s.Height *= v.Scale
	return s
}

// ScaledConnection transforms only the start anchor of c. The end point is
// derived from the transformed target scene, see EndingPoint.
func ScaledConnection(c Connection, v Viewport) Connection {
	p := TransformPoint(c.Start(), v)
	c.StartX, c.StartY = p.X, p.Y
	return c
}
