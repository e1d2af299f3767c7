package coords

import "math"

// Quad is a four-corner polygon approximating the footprint of a
// recognized text run, in the order top-left, top-right, bottom-right,
// bottom-left. The containing space is y-up: in normalized image
// coordinates the origin is the bottom-left corner of the bitmap and both
// axes run over [0,1].
type Quad struct {
	TL, TR, BR, BL Point
}

// QuadFromRect builds an axis-aligned quad from a bottom-left corner and
// extents. Used when an engine reports only a bounding rectangle.
func QuadFromRect(x, y, w, h float64) Quad {
	return Quad{
		TL: Point{X: x, Y: y + h},
		TR: Point{X: x + w, Y: y + h},
		BR: Point{X: x + w, Y: y},
		BL: Point{X: x, Y: y},
	}
}

// Centroid returns the mean of the four corners.
func (q Quad) Centroid() Point {
	return Point{
		X: (q.TL.X + q.TR.X + q.BR.X + q.BL.X) / 4,
		Y: (q.TL.Y + q.TR.Y + q.BR.Y + q.BL.Y) / 4,
	}
}

// BaselineAngle returns the angle of the bottom edge (BL toward BR) in
// radians, positive counter-clockwise.
func (q Quad) BaselineAngle() float64 {
	return math.Atan2(q.BR.Y-q.BL.Y, q.BR.X-q.BL.X)
}

// TopAngle returns the angle of the top edge (TL toward TR) in radians.
func (q Quad) TopAngle() float64 {
	return math.Atan2(q.TR.Y-q.TL.Y, q.TR.X-q.TL.X)
}

// Width returns the mean of the top and bottom edge lengths.
func (q Quad) Width() float64 {
	return (dist(q.TL, q.TR) + dist(q.BL, q.BR)) / 2
}

// Height returns the mean of the left and right edge lengths.
func (q Quad) Height() float64 {
	return (dist(q.TL, q.BL) + dist(q.TR, q.BR)) / 2
}

// IsAxisAligned reports whether both the baseline and the top edge are
// within tol radians of horizontal.
func (q Quad) IsAxisAligned(tol float64) bool {
	return math.Abs(q.BaselineAngle()) <= tol && math.Abs(q.TopAngle()) <= tol
}

// RotateAround rotates the quad about c by angle radians,
// counter-clockwise.
func (q Quad) RotateAround(c Point, angle float64) Quad {
	sin, cos := math.Sincos(angle)
	rot := func(p Point) Point {
		dx, dy := p.X-c.X, p.Y-c.Y
		return Point{
			X: c.X + dx*cos - dy*sin,
			Y: c.Y + dx*sin + dy*cos,
		}
	}
	return Quad{TL: rot(q.TL), TR: rot(q.TR), BR: rot(q.BR), BL: rot(q.BL)}
}

// Apply transforms every corner by m.
func (q Quad) Apply(m Matrix) Quad {
	return Quad{
		TL: m.Transform(q.TL),
		TR: m.Transform(q.TR),
		BR: m.Transform(q.BR),
		BL: m.Transform(q.BL),
	}
}

// Clamp limits every corner to the given bounds.
func (q Quad) Clamp(minX, minY, maxX, maxY float64) Quad {
	cl := func(p Point) Point {
		return Point{
			X: math.Min(math.Max(p.X, minX), maxX),
			Y: math.Min(math.Max(p.Y, minY), maxY),
		}
	}
	return Quad{TL: cl(q.TL), TR: cl(q.TR), BR: cl(q.BR), BL: cl(q.BL)}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
