package pagemodel

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/scanlayer/scanlayer/coords"
)

// ImageDocument is a Document backed by one raster image per page. Each
// image is mapped onto a page rectangle at a fixed resolution, so a
// 300 DPI scan of a letter page yields the usual 612×792-unit page.
type ImageDocument struct {
	pages []*ImagePage
}

// Option configures an ImageDocument.
type Option func(*config)

type config struct {
	dpi  float64
	text map[int]string
}

// WithDPI sets the resolution the page images were scanned at. The
// default of 72 maps one image pixel to one page unit.
func WithDPI(dpi float64) Option {
	return func(c *config) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// WithText attaches pre-existing extractable text to the page at the
// given zero-based index, enabling the skip-existing-text short circuit.
func WithText(page int, text string) Option {
	return func(c *config) { c.text[page] = text }
}

// NewImageDocument builds a document from decoded page images.
func NewImageDocument(images []image.Image, opts ...Option) (*ImageDocument, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("image document: no pages")
	}
	cfg := config{dpi: 72, text: make(map[int]string)}
	for _, opt := range opts {
		opt(&cfg)
	}
	doc := &ImageDocument{pages: make([]*ImagePage, 0, len(images))}
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("image document: page %d is nil", i+1)
		}
		b := img.Bounds()
		units := 72.0 / cfg.dpi
		doc.pages = append(doc.pages, &ImagePage{
			img: img,
			box: coords.Rect{
				URX: float64(b.Dx()) * units,
				URY: float64(b.Dy()) * units,
			},
			text: cfg.text[i],
		})
	}
	return doc, nil
}

func (d *ImageDocument) PageCount() int { return len(d.pages) }

func (d *ImageDocument) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("image document: page %d out of range [0,%d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// ImagePage is a single raster-backed page.
type ImagePage struct {
	img  image.Image
	box  coords.Rect
	text string
}

func (p *ImagePage) Boxes() BoxSet { return BoxSet{Media: p.box} }
func (p *ImagePage) Rotation() int { return 0 }
func (p *ImagePage) Text() string  { return p.text }

func (p *ImagePage) Appearance() Appearance { return Appearance{Image: p.img} }

// Render draws the page image into dst under the page-to-device matrix.
func (p *ImagePage) Render(ctx context.Context, dst *image.RGBA, m coords.Matrix) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	// Image pixels (top-left origin) to page units (bottom-left origin).
	b := p.img.Bounds()
	unitsX := p.box.Width() / float64(b.Dx())
	unitsY := p.box.Height() / float64(b.Dy())
	imgToPage := coords.Scale(unitsX, -unitsY).Multiply(coords.Translate(p.box.LLX, p.box.URY))
	full := imgToPage.Multiply(m)
	aff := f64.Aff3{full[0], full[2], full[4], full[1], full[3], full[5]}
	draw.CatmullRom.Transform(dst, aff, p.img, b, draw.Over, nil)
	return nil
}
