package skew

import (
	"math"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/ocr"
)

// SpanAngle estimates a single span's rotation in the pixel space of the
// w×h bitmap that produced its geometry. The estimate fits a
// least-squares line through sample centroids taken across the span: the
// word centroids when the engine supplied word geometry, otherwise evenly
// spaced substring slices of the span's own quad. When no line can be
// fitted the span's top edge supplies the angle. Estimates above the
// sanity ceiling are rejected.
func SpanAngle(span ocr.Span, w, h int, cfg Config) (float64, bool) {
	cfg = cfg.Normalized()
	centers := sampleCenters(span, w, h, cfg.MaxSubstringSamples)
	angle, ok := fitAngle(centers)
	if !ok {
		angle = coords.NormalizedToPixels(span.Quad, w, h).TopAngle()
	}
	if math.Abs(angle) > cfg.MaxSampleAngle {
		return 0, false
	}
	return angle, true
}

// sampleCenters collects centroid samples in pixel space: always the full
// span's centroid, plus word centroids or substring-slice centroids.
func sampleCenters(span ocr.Span, w, h int, maxSamples int) []coords.Point {
	px := coords.NormalizedToPixels(span.Quad, w, h)
	centers := []coords.Point{px.Centroid()}

	if len(span.Words) >= 2 {
		for _, word := range span.Words {
			centers = append(centers, coords.NormalizedToPixels(word.Quad, w, h).Centroid())
		}
		return centers
	}

	runes := []rune(span.Text)
	if len(runes) < 3 {
		return centers
	}
	n := len(runes)
	if n > maxSamples {
		n = maxSamples
	}
	for i := 1; i <= n; i++ {
		frac := float64(i) / float64(n)
		centers = append(centers, prefixQuad(px, frac).Centroid())
	}
	return centers
}

// prefixQuad slices the quad horizontally, keeping the left portion up to
// frac of its width.
func prefixQuad(q coords.Quad, frac float64) coords.Quad {
	return coords.Quad{
		TL: q.TL,
		TR: lerp(q.TL, q.TR, frac),
		BR: lerp(q.BL, q.BR, frac),
		BL: q.BL,
	}
}

func lerp(a, b coords.Point, t float64) coords.Point {
	return coords.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// fitAngle fits a least-squares line through the centered points and
// returns atan(slope). With too little horizontal spread it falls back to
// the angle between the first and last distinct points, and fails when
// even that is undefined.
func fitAngle(points []coords.Point) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	var mx, my float64
	for _, p := range points {
		mx += p.X
		my += p.Y
	}
	mx /= float64(len(points))
	my /= float64(len(points))

	var sxx, sxy float64
	for _, p := range points {
		dx, dy := p.X-mx, p.Y-my
		sxx += dx * dx
		sxy += dx * dy
	}
	if sxx > 1e-9 {
		return math.Atan(sxy / sxx), true
	}

	first, last := points[0], points[0]
	distinct := false
	for _, p := range points[1:] {
		if p != first {
			last = p
			distinct = true
		}
	}
	if !distinct || math.Abs(last.X-first.X) < 1e-9 {
		return 0, false
	}
	return math.Atan((last.Y - first.Y) / (last.X - first.X)), true
}
