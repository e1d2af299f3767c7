package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/scanlayer/scanlayer/observability"
	"github.com/scanlayer/scanlayer/render"
)

// DownscaleLadder lists the maximum bitmap dimensions attempted, in
// order. Zero means the bitmap is passed to the engine unscaled.
var DownscaleLadder = []int{0, 1600, 1200, 900, 700}

// ErrExhausted reports that every (configuration × scale) combination in
// the ladder failed.
var ErrExhausted = errors.New("ocr: all recognition attempts failed")

// Result carries the spans of the first successful attempt together with
// the resolution of the bitmap that was actually recognized. Downstream
// pixel-space geometry must use this resolution, not the original
// render's.
type Result struct {
	Spans    []Span
	Width    int
	Height   int
	Attempts int
}

// Recognize runs the recognition fallback ladder: four descending option
// configurations, each set retried against progressively downscaled
// copies of the bitmap. Rungs that do not shrink the bitmap below its
// size at the previous rung are skipped. The first combination that
// succeeds wins. When every combination fails the error wraps
// ErrExhausted and the last engine failure.
func Recognize(ctx context.Context, engine Engine, bmp *image.RGBA, opts Options, log observability.Logger) (*Result, error) {
	configs := fallbackOptions(opts)
	var lastErr error
	attempt := 0
	prevW, prevH := 0, 0
	for _, maxDim := range DownscaleLadder {
		img := render.Downscale(bmp, maxDim)
		b := img.Bounds()
		if b.Dx() == prevW && b.Dy() == prevH {
			// A rung that leaves the bitmap at its previous size would
			// replay attempts that already failed.
			continue
		}
		prevW, prevH = b.Dx(), b.Dy()
		for i, cfg := range configs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			attempt++
			spans, err := engine.Recognize(ctx, img, cfg)
			if err != nil {
				lastErr = err
				log.Debug("recognition attempt failed",
					observability.Int("attempt", attempt),
					observability.Int("config", i+1),
					observability.Int("maxDim", maxDim),
					observability.Error("err", err))
				continue
			}
			log.Info("recognition succeeded",
				observability.Int("attempt", attempt),
				observability.Int("spans", len(spans)),
				observability.Int("width", b.Dx()),
				observability.Int("height", b.Dy()),
				observability.String("quality", cfg.Quality.String()))
			return &Result{Spans: spans, Width: b.Dx(), Height: b.Dy(), Attempts: attempt}, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %w", ErrExhausted, lastErr)
	}
	return nil, ErrExhausted
}

// fallbackOptions derives the descending configuration sequence: as
// requested; correction disabled; lowest quality; lowest quality with no
// language hint. Configurations that collapse into an earlier one are
// dropped.
func fallbackOptions(o Options) []Options {
	seq := []Options{
		o,
		{Languages: o.Languages, Quality: o.Quality},
		{Languages: o.Languages, Quality: QualityFast},
		{Quality: QualityFast},
	}
	out := make([]Options, 0, len(seq))
	out = append(out, seq[0])
	for _, cfg := range seq[1:] {
		if !sameOptions(cfg, out[len(out)-1]) {
			out = append(out, cfg)
		}
	}
	return out
}

func sameOptions(a, b Options) bool {
	return a.Quality == b.Quality &&
		a.LanguageCorrection == b.LanguageCorrection &&
		strings.Join(a.Languages, ",") == strings.Join(b.Languages, ",")
}
