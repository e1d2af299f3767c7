// Package render rasterizes source pages into RGBA bitmaps for
// recognition, redaction burn-in, and flattened page output.
package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/pagemodel"
)

// maxPixels caps bitmap allocation. A page that would exceed it fails the
// render instead of exhausting memory.
const maxPixels = 1 << 27

// PageBitmap renders a page into a fresh bitmap of
// ceil(target·scale) pixels per axis, painted on a solid white backdrop so
// transparent regions do not read as black to the recognition engine.
// Scale factors below 1 are raised to 1. The source page is never
// mutated.
func PageBitmap(ctx context.Context, page pagemodel.Page, box, target coords.Rect, rotation int, scale float64) (*image.RGBA, error) {
	if scale < 1 {
		scale = 1
	}
	fw := target.Width() * scale
	fh := target.Height() * scale
	w := int(math.Ceil(fw))
	h := int(math.Ceil(fh))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: degenerate target %gx%g", target.Width(), target.Height())
	}
	if int64(w)*int64(h) > maxPixels {
		return nil, fmt.Errorf("render: bitmap %dx%d exceeds pixel budget", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	// Page space into a y-up device rect, then flip for the image's
	// top-left origin.
	device := coords.Rect{URX: fw, URY: fh}
	m := pagemodel.DrawTransform(box, device, rotation)
	m = m.Multiply(coords.Scale(1, -1)).Multiply(coords.Translate(0, fh))
	if err := page.Render(ctx, dst, m); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return dst, nil
}
