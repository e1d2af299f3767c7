package coords

import "math"

// Rect is an axis-aligned rectangle in a bottom-left-origin space,
// described by its lower-left and upper-right corners.
type Rect struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.URY - r.LLY }

// Area returns the rectangle's area; negative extents yield zero.
func (r Rect) Area() float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IsEmpty reports whether the rectangle has non-positive width or height.
func (r Rect) IsEmpty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Standardize returns an equivalent rectangle with non-negative extents.
func (r Rect) Standardize() Rect {
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r
}

// Intersect returns the overlap of two rectangles; an empty Rect when they
// are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		LLX: math.Max(r.LLX, o.LLX),
		LLY: math.Max(r.LLY, o.LLY),
		URX: math.Min(r.URX, o.URX),
		URY: math.Min(r.URY, o.URY),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}
