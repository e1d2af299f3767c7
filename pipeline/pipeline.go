// Package pipeline drives the two end-to-end conversions: synthesizing
// an invisible, searchable text layer over scanned pages, and burning
// redaction marks into flattened page rasters. Pages are processed and
// written strictly in document order; any page failure aborts the run
// with a PageError naming the page and stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/observability"
	"github.com/scanlayer/scanlayer/ocr"
	"github.com/scanlayer/scanlayer/pagemodel"
	"github.com/scanlayer/scanlayer/redact"
	"github.com/scanlayer/scanlayer/render"
	"github.com/scanlayer/scanlayer/skew"
	"github.com/scanlayer/scanlayer/synth"
	"github.com/scanlayer/scanlayer/writer"
)

// ErrNoPages reports a document with nothing to process.
var ErrNoPages = errors.New("pipeline: document has no pages")

// PageError wraps a failure on one page with the page number (1-based)
// and the processing stage that failed.
type PageError struct {
	Page  int
	Stage string
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

func pageErr(page int, stage string, err error) error {
	return &PageError{Page: page, Stage: stage, Err: err}
}

// Options tunes a Converter. The zero value selects sensible defaults.
type Options struct {
	// Languages hints at the document's languages, in priority order.
	Languages []string
	// Quality selects the recognition quality level.
	Quality ocr.Quality
	// LanguageCorrection enables dictionary-based text correction.
	LanguageCorrection bool
	// RenderScale is the rasterization scale in pixels per page unit for
	// recognition. Values below 1 are clamped to 1; zero selects 2.
	RenderScale float64
	// SkipPagesWithText copies pages that already carry extractable text
	// through without running recognition on them.
	SkipPagesWithText bool
	// Skew tunes the per-band skew model.
	Skew skew.Config
	// RedactionColor fills burned-in redaction rectangles. The alpha
	// channel is ignored; fills are always opaque. Zero value is black.
	RedactionColor color.RGBA
	// RedactionScale is the rasterization scale for redaction output.
	// Values below 1 are clamped to 1; zero selects 2.
	RedactionScale float64
	// Logger receives progress and diagnostic lines; nil disables them.
	Logger observability.Logger
	// Progress, when set, is called once per page before that page is
	// processed.
	Progress func(page, total int)
}

func (o Options) normalized() Options {
	switch {
	case o.RenderScale == 0:
		o.RenderScale = 2
	case o.RenderScale < 1:
		o.RenderScale = 1
	}
	switch {
	case o.RedactionScale == 0:
		o.RedactionScale = 2
	case o.RedactionScale < 1:
		o.RedactionScale = 1
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	return o
}

// Converter runs conversions against a fixed recognition engine and
// option set. It is safe to reuse across documents.
type Converter struct {
	engine ocr.Engine
	opts   Options
}

// New builds a Converter around the given engine. The engine may be nil
// when the converter is used for redaction only.
func New(engine ocr.Engine, opts Options) *Converter {
	return &Converter{engine: engine, opts: opts.normalized()}
}

// Convert recognizes every page of doc and streams a searchable output
// document to out. Each output page shows the original appearance
// unchanged with an invisible text layer aligned over the recognized
// content.
func (c *Converter) Convert(ctx context.Context, doc pagemodel.Document, out io.Writer) error {
	total := doc.PageCount()
	if total == 0 {
		return ErrNoPages
	}
	if c.engine == nil {
		return errors.New("pipeline: no recognition engine configured")
	}
	w, err := writer.NewDocument(out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	for i := 0; i < total; i++ {
		if c.opts.Progress != nil {
			c.opts.Progress(i+1, total)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.convertPage(ctx, w, doc, i); err != nil {
			return err
		}
	}
	return w.Close()
}

func (c *Converter) convertPage(ctx context.Context, w *writer.Document, doc pagemodel.Document, i int) error {
	start := time.Now()
	num := i + 1
	log := c.opts.Logger.With(observability.Int("page", num))

	page, err := doc.Page(i)
	if err != nil {
		return pageErr(num, "load", err)
	}
	box := page.Boxes().Resolve()
	log.Debug("box chosen",
		observability.Float64("width", box.Width()),
		observability.Float64("height", box.Height()))

	if c.opts.SkipPagesWithText && page.Text() != "" {
		log.Info("page already searchable, copied through")
		out, err := synth.OCRPage(page.Appearance(), box, nil, log)
		if err != nil {
			return pageErr(num, "synthesize", err)
		}
		if err := w.AddPage(out); err != nil {
			return pageErr(num, "write", err)
		}
		return nil
	}

	bmp, err := render.PageBitmap(ctx, page, box, box, page.Rotation(), c.opts.RenderScale)
	if err != nil {
		return pageErr(num, "render", err)
	}

	res, err := ocr.Recognize(ctx, c.engine, bmp, ocr.Options{
		Languages:          c.opts.Languages,
		Quality:            c.opts.Quality,
		LanguageCorrection: c.opts.LanguageCorrection,
	}, log)
	if err != nil {
		return pageErr(num, "recognize", err)
	}

	model := skew.Build(res.Spans, res.Width, res.Height, c.opts.Skew, log)
	spans := placeSpans(res, model, box, c.opts.Skew)

	out, err := synth.OCRPage(page.Appearance(), box, spans, log)
	if err != nil {
		return pageErr(num, "synthesize", err)
	}
	if err := w.AddPage(out); err != nil {
		return pageErr(num, "write", err)
	}
	log.Debug("page converted",
		observability.Int("spans", len(spans)),
		observability.Int("attempts", res.Attempts),
		observability.Int64("ms", time.Since(start).Milliseconds()))
	return nil
}

// placeSpans maps recognized spans from the normalized space of the
// recognized bitmap into final page coordinates. Axis-aligned spans are
// first rotated in place by the band model's local angle; spans that
// already carry rotated geometry are trusted as-is.
func placeSpans(res *ocr.Result, model *skew.Model, box coords.Rect, cfg skew.Config) []synth.Span {
	cfg = cfg.Normalized()
	out := make([]synth.Span, 0, len(res.Spans))
	for _, s := range res.Spans {
		q := s.Quad
		px := coords.NormalizedToPixels(q, res.Width, res.Height)
		if px.IsAxisAligned(cfg.AxisAlignedTol) {
			if a := model.AngleAt(q.Centroid().Y); a != 0 {
				q = coords.RotateNormalized(q, a, res.Width, res.Height)
			}
		}
		out = append(out, synth.Span{Text: s.Text, Quad: coords.NormalizedToPage(q, box)})
	}
	return out
}

// Redact renders every page of doc, burns the marks for that page into
// the raster, and streams a flattened output document to out. Pages
// without marks are still flattened so the output is uniformly raster.
// Invalid marks are dropped up front; if none survive, Redact fails with
// redact.ErrNoValidMarks before touching any page.
func (c *Converter) Redact(ctx context.Context, doc pagemodel.Document, marks []redact.Mark, out io.Writer) error {
	total := doc.PageCount()
	if total == 0 {
		return ErrNoPages
	}
	plan, err := redact.Plan(marks, total, c.opts.Logger)
	if err != nil {
		return err
	}
	w, err := writer.NewDocument(out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	for i := 0; i < total; i++ {
		if c.opts.Progress != nil {
			c.opts.Progress(i+1, total)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.redactPage(ctx, w, doc, i, plan[i]); err != nil {
			return err
		}
	}
	return w.Close()
}

func (c *Converter) redactPage(ctx context.Context, w *writer.Document, doc pagemodel.Document, i int, rects []coords.Rect) error {
	start := time.Now()
	num := i + 1
	log := c.opts.Logger.With(observability.Int("page", num))

	page, err := doc.Page(i)
	if err != nil {
		return pageErr(num, "load", err)
	}
	box := page.Boxes().Resolve()
	log.Debug("box chosen",
		observability.Float64("width", box.Width()),
		observability.Float64("height", box.Height()))

	bmp, err := render.PageBitmap(ctx, page, box, box, page.Rotation(), c.opts.RedactionScale)
	if err != nil {
		return pageErr(num, "render", err)
	}
	if len(rects) > 0 {
		redact.Burn(bmp, rects, box, c.opts.RedactionScale, c.opts.RedactionColor)
		log.Info("redactions burned in", observability.Int("rects", len(rects)))
	}

	out, err := synth.RedactedPage(bmp, box)
	if err != nil {
		return pageErr(num, "synthesize", err)
	}
	if err := w.AddPage(out); err != nil {
		return pageErr(num, "write", err)
	}
	log.Debug("page flattened",
		observability.Int64("ms", time.Since(start).Milliseconds()))
	return nil
}
