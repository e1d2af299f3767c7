package ocr

import (
	"context"
	"image"

	"github.com/scanlayer/scanlayer/coords"
)

// Quality selects the engine's speed/accuracy trade-off.
type Quality int

const (
	QualityFast Quality = iota
	QualityAccurate
)

func (q Quality) String() string {
	if q == QualityAccurate {
		return "accurate"
	}
	return "fast"
}

// Options configures a single recognition request.
type Options struct {
	// Languages is an ordered list of locale tags hinting at the
	// document's languages; empty means no hint.
	Languages []string
	// Quality selects the recognition quality level.
	Quality Quality
	// LanguageCorrection enables the engine's dictionary-based
	// post-correction of recognized text.
	LanguageCorrection bool
}

// Word is a single recognized token with its geometry in normalized image
// coordinates (origin bottom-left, both axes in [0,1]).
type Word struct {
	Text       string
	Quad       coords.Quad
	Confidence float64
}

// Span is a recognized line of text. Engines that cannot supply
// rotation-aware geometry report an axis-parallel quad and set
// AxisAligned, which marks the span as a candidate for local skew
// correction downstream.
type Span struct {
	Text        string
	Quad        coords.Quad
	AxisAligned bool
	Words       []Word
	Confidence  float64
}

// Engine is the recognition provider contract: one bitmap in, recognized
// spans out. Geometry is reported in the normalized coordinate space of
// the bitmap that was actually recognized.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, bmp image.Image, opts Options) ([]Span, error)
}
