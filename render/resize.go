package render

import (
	"image"

	"golang.org/x/image/draw"
)

// resampler performs high-quality downsampling. When nil, Downscale falls
// back to a plain redraw-based bilinear resize.
var resampler draw.Scaler = draw.CatmullRom

// Downscale returns a copy of src whose longest side is at most maxDim
// pixels, preserving aspect ratio. A maxDim of zero or a bitmap already
// within the limit is returned unchanged.
func Downscale(src *image.RGBA, maxDim int) *image.RGBA {
	if maxDim <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return src
	}
	factor := float64(maxDim) / float64(longest)
	nw := int(float64(w) * factor)
	nh := int(float64(h) * factor)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	s := resampler
	if s == nil {
		s = draw.ApproxBiLinear
	}
	s.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
