package coords

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-7 }

func TestMatrixRoundTrip(t *testing.T) {
	m := Translate(3, -2).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	p := Point{X: 1.5, Y: -4}
	got := inv.Transform(m.Transform(p))
	if !near(got.X, p.X) || !near(got.Y, p.Y) {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
}

func TestMatrixSingular(t *testing.T) {
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Fatal("expected error for singular matrix")
	}
}

func TestRotateDirection(t *testing.T) {
	// Positive angles rotate counter-clockwise: +x axis moves toward +y.
	p := Rotate(math.Pi / 2).Transform(Point{X: 1, Y: 0})
	if !near(p.X, 0) || !near(p.Y, 1) {
		t.Fatalf("rotated point = %+v, want (0,1)", p)
	}
}

func TestRectStandardizeAndArea(t *testing.T) {
	r := Rect{LLX: 10, LLY: 20, URX: 4, URY: 8}.Standardize()
	want := Rect{LLX: 4, LLY: 8, URX: 10, URY: 20}
	if r != want {
		t.Fatalf("Standardize() = %+v, want %+v", r, want)
	}
	if got := r.Area(); !near(got, 72) {
		t.Fatalf("Area() = %v, want 72", got)
	}
	if got := (Rect{LLX: 0, LLY: 0, URX: 0, URY: 5}).Area(); got != 0 {
		t.Fatalf("degenerate Area() = %v, want 0", got)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{LLX: 0, LLY: 0, URX: 10, URY: 10}
	b := Rect{LLX: 5, LLY: 5, URX: 15, URY: 15}
	got := a.Intersect(b)
	want := Rect{LLX: 5, LLY: 5, URX: 10, URY: 10}
	if got != want {
		t.Fatalf("Intersect() = %+v, want %+v", got, want)
	}
	if got := a.Intersect(Rect{LLX: 20, LLY: 20, URX: 30, URY: 30}); !got.IsEmpty() {
		t.Fatalf("disjoint Intersect() = %+v, want empty", got)
	}
}

func TestQuadFromRect(t *testing.T) {
	q := QuadFromRect(1, 2, 3, 4)
	if q.BL != (Point{X: 1, Y: 2}) || q.TR != (Point{X: 4, Y: 6}) {
		t.Fatalf("unexpected corners: %+v", q)
	}
	if !q.IsAxisAligned(eps) {
		t.Fatal("rect-derived quad should be axis-aligned")
	}
	if !near(q.Width(), 3) || !near(q.Height(), 4) {
		t.Fatalf("Width/Height = %v/%v, want 3/4", q.Width(), q.Height())
	}
}

func TestQuadRotatePreservesCentroidAndSize(t *testing.T) {
	q := QuadFromRect(10, 10, 40, 8)
	c := q.Centroid()
	angle := 0.1
	r := q.RotateAround(c, angle)
	rc := r.Centroid()
	if !near(rc.X, c.X) || !near(rc.Y, c.Y) {
		t.Fatalf("centroid moved: %+v -> %+v", c, rc)
	}
	if !near(r.Width(), q.Width()) || !near(r.Height(), q.Height()) {
		t.Fatalf("size changed: %v/%v -> %v/%v", q.Width(), q.Height(), r.Width(), r.Height())
	}
	if got := r.BaselineAngle(); !near(got, angle) {
		t.Fatalf("BaselineAngle() = %v, want %v", got, angle)
	}
	if r.IsAxisAligned(0.01) {
		t.Fatal("rotated quad should not classify as axis-aligned")
	}
}

func TestRotateNormalizedClamps(t *testing.T) {
	q := QuadFromRect(0.9, 0.9, 0.1, 0.1)
	r := RotateNormalized(q, math.Pi/4, 1000, 1000)
	for _, p := range []Point{r.TL, r.TR, r.BR, r.BL} {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("corner escaped unit square: %+v", p)
		}
	}
}

func TestNormalizedToPage(t *testing.T) {
	target := Rect{LLX: 10, LLY: 20, URX: 622, URY: 812}
	q := QuadFromRect(0, 0, 1, 1)
	got := NormalizedToPage(q, target)
	if !near(got.BL.X, 10) || !near(got.BL.Y, 20) || !near(got.TR.X, 622) || !near(got.TR.Y, 812) {
		t.Fatalf("full quad maps to %+v, want target corners", got)
	}
	mid := NormalizedToPage(QuadFromRect(0.5, 0.5, 0, 0), target).Centroid()
	if !near(mid.X, 316) || !near(mid.Y, 416) {
		t.Fatalf("midpoint maps to %+v", mid)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	q := QuadFromRect(0.25, 0.5, 0.25, 0.125)
	back := PixelsToNormalized(NormalizedToPixels(q, 1600, 900), 1600, 900)
	for _, pair := range [][2]Point{{q.TL, back.TL}, {q.TR, back.TR}, {q.BR, back.BR}, {q.BL, back.BL}} {
		if !near(pair[0].X, pair[1].X) || !near(pair[0].Y, pair[1].Y) {
			t.Fatalf("round trip mismatch: %+v != %+v", pair[0], pair[1])
		}
	}
}
