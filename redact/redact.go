// Package redact validates redaction marks and burns them into rendered
// page bitmaps. Burn-in is irreversible: the filled bitmap becomes the
// page's sole visible content.
package redact

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/observability"
)

// MinDimension is the smallest width or height, in page units, a mark may
// have; anything thinner is discarded as noise.
const MinDimension = 0.5

// ErrNoValidMarks reports that an entire redaction request contained no
// usable rectangle. A no-op redaction pass must not be mistaken for
// success.
var ErrNoValidMarks = errors.New("redact: no valid redaction rectangles")

// Mark is a redaction request: a zero-based page index and a rectangle in
// final page coordinates.
type Mark struct {
	Page int
	Rect coords.Rect
}

// Plan standardizes and filters the marks and groups the survivors by
// page. Marks on out-of-range pages or below MinDimension are dropped
// with a log line; if nothing survives at all, Plan fails with
// ErrNoValidMarks.
func Plan(marks []Mark, pageCount int, log observability.Logger) (map[int][]coords.Rect, error) {
	byPage := make(map[int][]coords.Rect)
	kept := 0
	for _, m := range marks {
		r := m.Rect.Standardize()
		if m.Page < 0 || m.Page >= pageCount {
			log.Warn("redaction mark dropped: page out of range",
				observability.Int("page", m.Page),
				observability.Int("pages", pageCount))
			continue
		}
		if r.Width() < MinDimension || r.Height() < MinDimension {
			log.Warn("redaction mark dropped: below minimum size",
				observability.Int("page", m.Page),
				observability.Float64("width", r.Width()),
				observability.Float64("height", r.Height()))
			continue
		}
		byPage[m.Page] = append(byPage[m.Page], r)
		kept++
	}
	if kept == 0 {
		return nil, ErrNoValidMarks
	}
	log.Info("redaction plan", observability.Int("marks", kept), observability.Int("pages", len(byPage)))
	return byPage, nil
}

// Burn fills each rectangle into the bitmap with an opaque color. The
// rectangles are in page coordinates relative to pageRect; the bitmap is
// pageRect rendered at the given scale with a top-left device origin.
func Burn(bmp *image.RGBA, rects []coords.Rect, pageRect coords.Rect, scale float64, fill color.RGBA) {
	fill.A = 0xff
	src := image.NewUniform(fill)
	h := bmp.Bounds().Dy()
	for _, r := range rects {
		x0 := int(math.Floor((r.LLX - pageRect.LLX) * scale))
		x1 := int(math.Ceil((r.URX - pageRect.LLX) * scale))
		// Page y grows upward, device y downward.
		y0 := h - int(math.Ceil((r.URY-pageRect.LLY)*scale))
		y1 := h - int(math.Floor((r.LLY-pageRect.LLY)*scale))
		dr := image.Rect(x0, y0, x1, y1).Intersect(bmp.Bounds())
		if dr.Empty() {
			continue
		}
		draw.Draw(bmp, dr, src, image.Point{}, draw.Src)
	}
}
