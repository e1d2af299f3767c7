package coords

// Conversions between the three spaces a recognized quad passes through:
// normalized image coordinates (bottom-left origin, [0,1] on both axes),
// pixel coordinates of the bitmap that produced the geometry (bottom-left
// origin, y-up, units of pixels), and final page coordinates (bottom-left
// origin, page units).

// NormalizedToPixels scales a normalized quad into the pixel space of a
// w×h bitmap.
func NormalizedToPixels(q Quad, w, h int) Quad {
	return q.Apply(Scale(float64(w), float64(h)))
}

// PixelsToNormalized maps a pixel-space quad back into normalized
// coordinates.
func PixelsToNormalized(q Quad, w, h int) Quad {
	return q.Apply(Scale(1/float64(w), 1/float64(h)))
}

// RotateNormalized rotates a normalized quad about its own centroid by
// angle radians. The rotation is carried out in the pixel space of the
// w×h bitmap so the angle is geometrically true regardless of the page's
// aspect ratio, then converted back and clamped to the image bounds.
func RotateNormalized(q Quad, angle float64, w, h int) Quad {
	px := NormalizedToPixels(q, w, h)
	px = px.RotateAround(px.Centroid(), angle)
	return PixelsToNormalized(px, w, h).Clamp(0, 0, 1, 1)
}

// NormalizedToPage maps a normalized quad onto the target page rectangle.
// Both spaces have a bottom-left origin, so the mapping is a scale by the
// rectangle's extent plus its offset; the render scale factor cancels out
// of normalized coordinates and does not appear here.
func NormalizedToPage(q Quad, target Rect) Quad {
	m := Scale(target.Width(), target.Height()).Multiply(Translate(target.LLX, target.LLY))
	return q.Apply(m)
}
