// Package pagemodel defines the source-document boundary of the
// conversion pipeline. A Document enumerates pages; a Page reports its
// box rectangles, rotation, and any pre-existing extractable text, and
// renders its own appearance into a caller-supplied bitmap. The package
// also ships ImageDocument, a raster-backed implementation used by the
// command-line tool and tests.
package pagemodel

import (
	"context"
	"image"

	"github.com/scanlayer/scanlayer/coords"
)

// Document is a handle on an opened source document.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
}

// Page is a single source page.
type Page interface {
	// Boxes returns the page's candidate box rectangles in page space.
	Boxes() BoxSet
	// Rotation returns the page's declared rotation in degrees, a
	// multiple of 90.
	Rotation() int
	// Text returns the page's pre-existing extractable text, or "" when
	// the page carries none.
	Text() string
	// Render draws the page's appearance into dst. The matrix maps the
	// page's own coordinate system into dst pixel coordinates, with the
	// device origin at the top-left corner and y growing downward.
	Render(ctx context.Context, dst *image.RGBA, m coords.Matrix) error
	// Appearance returns the page's original content for re-emission
	// into an output page.
	Appearance() Appearance
}

// Appearance carries a page's original content in one of two forms: a
// single raster image covering the whole page rectangle, or pre-composed
// content stream operators in the page's own coordinate space.
type Appearance struct {
	Image  image.Image
	Stream []byte
}
