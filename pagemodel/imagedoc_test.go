package pagemodel

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/scanlayer/scanlayer/coords"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNewImageDocumentPageSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2550, 3300))
	doc, err := NewImageDocument([]image.Image{img}, WithDPI(300))
	if err != nil {
		t.Fatalf("NewImageDocument() error = %v", err)
	}
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) error = %v", err)
	}
	box := page.Boxes().Resolve()
	if box.Width() != 612 || box.Height() != 792 {
		t.Fatalf("page box = %+v, want 612x792", box)
	}
}

func TestNewImageDocumentRejectsEmpty(t *testing.T) {
	if _, err := NewImageDocument(nil); err == nil {
		t.Fatal("expected error for zero pages")
	}
	if _, err := NewImageDocument([]image.Image{nil}); err == nil {
		t.Fatal("expected error for nil page image")
	}
}

func TestImageDocumentText(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	doc, err := NewImageDocument([]image.Image{img, img}, WithText(1, "already searchable"))
	if err != nil {
		t.Fatalf("NewImageDocument() error = %v", err)
	}
	p0, _ := doc.Page(0)
	p1, _ := doc.Page(1)
	if p0.Text() != "" {
		t.Fatalf("page 0 text = %q, want empty", p0.Text())
	}
	if p1.Text() != "already searchable" {
		t.Fatalf("page 1 text = %q", p1.Text())
	}
}

func TestImageDocumentPageOutOfRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	doc, err := NewImageDocument([]image.Image{img})
	if err != nil {
		t.Fatalf("NewImageDocument() error = %v", err)
	}
	if _, err := doc.Page(1); err == nil {
		t.Fatal("expected error for out-of-range page")
	}
	if _, err := doc.Page(-1); err == nil {
		t.Fatal("expected error for negative page")
	}
}

func TestImagePageRenderFillsTarget(t *testing.T) {
	src := solidImage(20, 10, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	doc, err := NewImageDocument([]image.Image{src})
	if err != nil {
		t.Fatalf("NewImageDocument() error = %v", err)
	}
	page, _ := doc.Page(0)

	dst := image.NewRGBA(image.Rect(0, 0, 40, 20))
	// Page units to destination pixels, flipping y for the top-left device
	// origin.
	m := coords.Scale(2, -2).Multiply(coords.Translate(0, float64(dst.Bounds().Dy())))
	if err := page.Render(context.Background(), dst, m); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	r, _, _, _ := dst.At(20, 10).RGBA()
	if r>>8 < 150 {
		t.Fatalf("center pixel not painted, got r=%d", r>>8)
	}
}

func TestImagePageRenderHonorsContext(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{A: 255})
	doc, _ := NewImageDocument([]image.Image{src})
	page, _ := doc.Page(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := page.Render(ctx, dst, coords.Identity()); err == nil {
		t.Fatal("expected context error")
	}
}
