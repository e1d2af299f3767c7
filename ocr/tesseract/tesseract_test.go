package tesseract

import (
	"image"
	"math"
	"testing"

	"github.com/otiai10/gosseract/v2"
)

func TestNormalizedQuadFlipsVertically(t *testing.T) {
	// A 100x40 box whose top-left pixel corner is (50, 20) in a 1000x500
	// image: normalized bottom edge sits at 1 - 60/500.
	q := normalizedQuad(image.Rect(50, 20, 150, 60), 1000, 500)
	if math.Abs(q.BL.X-0.05) > 1e-9 || math.Abs(q.BL.Y-0.88) > 1e-9 {
		t.Fatalf("BL = %+v, want (0.05, 0.88)", q.BL)
	}
	if math.Abs(q.TR.X-0.15) > 1e-9 || math.Abs(q.TR.Y-0.96) > 1e-9 {
		t.Fatalf("TR = %+v, want (0.15, 0.96)", q.TR)
	}
	if !q.IsAxisAligned(1e-9) {
		t.Fatal("box-derived quad should be axis-aligned")
	}
}

func TestSpansFromBoxesGroupsWords(t *testing.T) {
	lines := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 400, 50), Word: "hello world", Confidence: 90},
		{Box: image.Rect(0, 100, 400, 150), Word: "second line", Confidence: 80},
	}
	words := []gosseract.BoundingBox{
		{Box: image.Rect(0, 10, 180, 40), Word: "hello", Confidence: 91},
		{Box: image.Rect(200, 10, 400, 40), Word: "world", Confidence: 89},
		{Box: image.Rect(0, 110, 220, 140), Word: "second", Confidence: 80},
	}
	spans := spansFromBoxes(lines, words, 400, 200)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Text != "hello world" || len(spans[0].Words) != 2 {
		t.Fatalf("span[0] = %q with %d words", spans[0].Text, len(spans[0].Words))
	}
	if len(spans[1].Words) != 1 || spans[1].Words[0].Text != "second" {
		t.Fatalf("span[1] words = %+v", spans[1].Words)
	}
	if !spans[0].AxisAligned {
		t.Fatal("tesseract spans must be marked axis-aligned")
	}
}

func TestSpansFromBoxesSkipsBlankLines(t *testing.T) {
	lines := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 10, 10), Word: "   "},
	}
	if spans := spansFromBoxes(lines, nil, 100, 100); len(spans) != 0 {
		t.Fatalf("blank line produced %d spans", len(spans))
	}
}
