// Package tesseract provides the default ocr.Engine, backed by the
// gosseract client.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/ocr"
)

// Engine implements ocr.Engine using Tesseract.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize rasterizes the bitmap to PNG, hands it to Tesseract, and
// converts the reported line and word boxes into normalized
// bottom-left-origin quads. Tesseract reports only axis-aligned boxes, so
// every span is marked AxisAligned.
func (e *Engine) Recognize(ctx context.Context, bmp image.Image, opts ocr.Options) ([]ocr.Span, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, bmp); err != nil {
		return nil, fmt.Errorf("encode bitmap: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := applyOptions(c, opts); err != nil {
		return nil, err
	}

	lines, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("text lines: %w", err)
	}
	// Word geometry refines the skew estimate; its absence is not fatal.
	words, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		words = nil
	}
	b := bmp.Bounds()
	return spansFromBoxes(lines, words, b.Dx(), b.Dy()), nil
}

func applyOptions(c *gosseract.Client, opts ocr.Options) error {
	vars := map[string]string{}
	if opts.Quality == ocr.QualityFast {
		vars["tessedit_do_invert"] = "0"
		vars["textord_fast_pitch_test"] = "1"
	}
	if !opts.LanguageCorrection {
		vars["tessedit_enable_dict_correction"] = "0"
		vars["tessedit_enable_bigram_correction"] = "0"
	}
	for k, v := range vars {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}

// spansFromBoxes groups Tesseract word boxes under the text line whose
// box contains the word's center.
func spansFromBoxes(lines, words []gosseract.BoundingBox, w, h int) []ocr.Span {
	spans := make([]ocr.Span, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimSpace(line.Word)
		if text == "" {
			continue
		}
		span := ocr.Span{
			Text:        text,
			Quad:        normalizedQuad(line.Box, w, h),
			AxisAligned: true,
			Confidence:  line.Confidence / 100,
		}
		for _, word := range words {
			wt := strings.TrimSpace(word.Word)
			if wt == "" {
				continue
			}
			cx := (word.Box.Min.X + word.Box.Max.X) / 2
			cy := (word.Box.Min.Y + word.Box.Max.Y) / 2
			if image.Pt(cx, cy).In(line.Box) {
				span.Words = append(span.Words, ocr.Word{
					Text:       wt,
					Quad:       normalizedQuad(word.Box, w, h),
					Confidence: word.Confidence / 100,
				})
			}
		}
		spans = append(spans, span)
	}
	return spans
}

// normalizedQuad converts a top-left-origin pixel rectangle into a
// normalized bottom-left-origin quad.
func normalizedQuad(r image.Rectangle, w, h int) coords.Quad {
	fw, fh := float64(w), float64(h)
	return coords.QuadFromRect(
		float64(r.Min.X)/fw,
		(fh-float64(r.Max.Y))/fh,
		float64(r.Dx())/fw,
		float64(r.Dy())/fh,
	)
}
