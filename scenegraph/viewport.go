package scenegraph

// ZoomTo returns v at newScale. The logical extent shrinks as the scale
// grows so the on-screen size stays the same. Pan is untouched and no
// bounds are enforced; newScale must be > 0.
func ZoomTo(v Viewport, newScale float64) Viewport {
	ratio := v.Scale / newScale
	v.Width *= ratio
	v.Height *= ratio
	v.Scale = newScale
	return v
}

// Zoom multiplies the scale by factor. factor > 1 zooms in.
func Zoom(v Viewport, factor float64) Viewport {
	return ZoomTo(v, v.Scale*factor)
}

// Pan moves the viewport by a screen-space displacement.
func Pan(v Viewport, screenDelta Point) Viewport {
	d := InverseTransformDelta(screenDelta, v)
	v.X += d.X
	v.Y += d.Y
	return v
}
