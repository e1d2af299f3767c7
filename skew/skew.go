// Package skew builds a position-dependent rotation model for a scanned
// page from the internal geometry of recognized text spans. Scans are
// frequently skewed by a slowly varying angle (feed-roller drift), so the
// page is split into horizontal bands and each band carries its own
// estimate; axis-aligned spans are later corrected against the band model
// instead of a single global angle.
package skew

import (
	"math"
	"sort"

	"github.com/scanlayer/scanlayer/observability"
	"github.com/scanlayer/scanlayer/ocr"
)

const (
	DefaultBands               = 20
	DefaultMaxSampleAngle      = math.Pi / 4          // 45°
	DefaultAxisAlignedTol      = 0.25 * math.Pi / 180 // 0.25°
	DefaultMaxSubstringSamples = 10
)

// Config carries the model's tunable thresholds. The defaults are
// empirical; zero values select them.
type Config struct {
	// Bands is the number of horizontal slices covering the page from
	// bottom to top.
	Bands int
	// MaxSampleAngle is the sanity ceiling: per-span estimates with a
	// larger magnitude are discarded.
	MaxSampleAngle float64
	// AxisAlignedTol classifies a span's quad as axis-aligned when both
	// its baseline and top edge are within this angle of horizontal.
	AxisAlignedTol float64
	// MaxSubstringSamples bounds the evenly spaced substring samples
	// taken per span during angle estimation.
	MaxSubstringSamples int
}

// Normalized returns the configuration with defaults applied to zero
// values.
func (c Config) Normalized() Config {
	if c.Bands <= 0 {
		c.Bands = DefaultBands
	}
	if c.MaxSampleAngle <= 0 {
		c.MaxSampleAngle = DefaultMaxSampleAngle
	}
	if c.AxisAlignedTol <= 0 {
		c.AxisAlignedTol = DefaultAxisAlignedTol
	}
	if c.MaxSubstringSamples <= 0 {
		c.MaxSubstringSamples = DefaultMaxSubstringSamples
	}
	return c
}

// Model is an ordered sequence of band angles covering the page from
// bottom (band 0) to top. Every band has a defined angle.
type Model struct {
	bands []float64
}

// Build derives the band model from the recognized spans of a page. The
// span geometry is interpreted in the pixel space of the w×h bitmap the
// engine actually recognized.
func Build(spans []ocr.Span, w, h int, cfg Config, log observability.Logger) *Model {
	cfg = cfg.Normalized()
	samples := make([][]float64, cfg.Bands)
	for _, span := range spans {
		angle, ok := SpanAngle(span, w, h, cfg)
		if !ok {
			log.Debug("skew sample rejected", observability.String("text", span.Text))
			continue
		}
		y := clamp01(span.Quad.Centroid().Y)
		i := bandIndex(y, cfg.Bands)
		samples[i] = append(samples[i], angle)
	}

	bands := make([]float64, cfg.Bands)
	known := make([]bool, cfg.Bands)
	for i, s := range samples {
		if len(s) > 0 {
			bands[i] = median(s)
			known[i] = true
		}
	}
	fillGaps(bands, known)
	smooth(bands)
	filled := 0
	for _, k := range known {
		if k {
			filled++
		}
	}
	log.Debug("skew model built",
		observability.Int("bands", cfg.Bands),
		observability.Int("sampled", filled))
	return &Model{bands: bands}
}

// AngleAt returns the model's angle at a normalized vertical position,
// linearly interpolated between the two nearest bands.
func (m *Model) AngleAt(y float64) float64 {
	n := len(m.bands)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return m.bands[0]
	}
	pos := clamp01(y)*float64(n) - 0.5
	if pos <= 0 {
		return m.bands[0]
	}
	if pos >= float64(n-1) {
		return m.bands[n-1]
	}
	i := int(pos)
	t := pos - float64(i)
	return m.bands[i]*(1-t) + m.bands[i+1]*t
}

// Bands returns a copy of the band angles, bottom to top.
func (m *Model) Bands() []float64 {
	out := make([]float64, len(m.bands))
	copy(out, m.bands)
	return out
}

func bandIndex(y float64, n int) int {
	i := int(y * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func median(vals []float64) float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// fillGaps assigns every empty band an angle: linear interpolation
// between the nearest non-empty neighbors, a single neighbor's value at
// the edges, or zero when no band has a sample at all.
func fillGaps(bands []float64, known []bool) {
	prev := -1
	for i := range bands {
		if !known[i] {
			continue
		}
		if prev == -1 {
			// Copy the first known value down to the bottom edge.
			for j := 0; j < i; j++ {
				bands[j] = bands[i]
			}
		} else {
			for j := prev + 1; j < i; j++ {
				t := float64(j-prev) / float64(i-prev)
				bands[j] = bands[prev]*(1-t) + bands[i]*t
			}
		}
		prev = i
	}
	if prev == -1 {
		for i := range bands {
			bands[i] = 0
		}
		return
	}
	for j := prev + 1; j < len(bands); j++ {
		bands[j] = bands[prev]
	}
}

// smooth applies one 3-point pass with weights 0.25/0.5/0.25, using the
// band itself in place of a missing neighbor at the edges.
func smooth(bands []float64) {
	if len(bands) < 2 {
		return
	}
	src := make([]float64, len(bands))
	copy(src, bands)
	for i := range bands {
		prev, next := src[i], src[i]
		if i > 0 {
			prev = src[i-1]
		}
		if i < len(src)-1 {
			next = src[i+1]
		}
		bands[i] = 0.25*prev + 0.5*src[i] + 0.25*next
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
