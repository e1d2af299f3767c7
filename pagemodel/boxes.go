package pagemodel

import (
	"math"

	"github.com/scanlayer/scanlayer/coords"
)

// Default page rectangle (US Letter in page units) used when every
// candidate box is degenerate.
var DefaultBox = coords.Rect{LLX: 0, LLY: 0, URX: 612, URY: 792}

// BoxSet holds a page's candidate box rectangles.
type BoxSet struct {
	Media coords.Rect
	Crop  coords.Rect
	Trim  coords.Rect
	Bleed coords.Rect
	Art   coords.Rect
}

// Resolve returns the authoritative page rectangle: the candidate with
// the greatest non-degenerate area, preferring media, crop, trim, bleed,
// then art on ties. If no candidate has area, it falls back to the crop
// box, then the media box, then DefaultBox.
func (b BoxSet) Resolve() coords.Rect {
	candidates := []coords.Rect{b.Media, b.Crop, b.Trim, b.Bleed, b.Art}
	var best coords.Rect
	bestArea := 0.0
	for _, c := range candidates {
		c = c.Standardize()
		if a := c.Area(); a > bestArea {
			best, bestArea = c, a
		}
	}
	if bestArea > 0 {
		return best
	}
	if crop := b.Crop.Standardize(); !crop.IsEmpty() {
		return crop
	}
	if media := b.Media.Standardize(); !media.IsEmpty() {
		return media
	}
	return DefaultBox
}

// DrawTransform maps the page coordinate system bounded by box into the
// target rectangle, honoring the page's declared rotation. Rotation is in
// degrees clockwise when displayed, normalized to a multiple of 90.
func DrawTransform(box, target coords.Rect, rotation int) coords.Matrix {
	rot := ((rotation % 360) + 360) % 360
	rot -= rot % 90

	w, h := box.Width(), box.Height()
	m := coords.Translate(-box.LLX, -box.LLY)
	dispW, dispH := w, h
	switch rot {
	case 90:
		m = m.Multiply(coords.Rotate(-math.Pi / 2)).Multiply(coords.Translate(0, w))
		dispW, dispH = h, w
	case 180:
		m = m.Multiply(coords.Rotate(math.Pi)).Multiply(coords.Translate(w, h))
	case 270:
		m = m.Multiply(coords.Rotate(math.Pi / 2)).Multiply(coords.Translate(h, 0))
		dispW, dispH = h, w
	}
	if dispW == 0 || dispH == 0 {
		return coords.Identity()
	}
	m = m.Multiply(coords.Scale(target.Width()/dispW, target.Height()/dispH))
	return m.Multiply(coords.Translate(target.LLX, target.LLY))
}
