// Package synth assembles output pages: the original page appearance
// with an invisible, positioned text layer for OCR mode, or a flattened
// raster image for redaction mode.
package synth

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/observability"
	"github.com/scanlayer/scanlayer/pagemodel"
	"github.com/scanlayer/scanlayer/writer"
)

// minSpanExtent is the smallest quad width or height, in page units, a
// text run may occupy; anything smaller is dropped as degenerate.
const minSpanExtent = 1.0

// Span is a placed text run in final page coordinates.
type Span struct {
	Text string
	Quad coords.Quad
}

// OCRPage builds an output page that draws the original appearance
// unchanged and overlays each span as an invisible text run whose
// baseline, rotation, and scaling make its rendered box match the quad.
func OCRPage(app pagemodel.Appearance, box coords.Rect, spans []Span, log observability.Logger) (*writer.Page, error) {
	var b bytes.Buffer
	page := &writer.Page{Box: box}

	if app.Image != nil {
		img, err := rgbImage(app.Image)
		if err != nil {
			return nil, err
		}
		page.Images = map[string]*writer.Image{"Im0": img}
		drawImageOp(&b, "Im0", box)
	} else if len(app.Stream) > 0 {
		b.Write(app.Stream)
		b.WriteByte('\n')
	}

	text := textLayer(spans, log)
	if len(text) > 0 {
		b.Write(text)
		page.UsesFont = true
	}
	page.Content = bytes.TrimRight(b.Bytes(), "\n")
	return page, nil
}

// RedactedPage builds an output page whose only content is the rendered
// (and burned-in) bitmap stretched over the page rectangle. All original
// vector content is discarded.
func RedactedPage(bmp *image.RGBA, box coords.Rect) (*writer.Page, error) {
	img, err := rgbImage(bmp)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	drawImageOp(&b, "Im0", box)
	return &writer.Page{
		Box:     box,
		Content: bytes.TrimRight(b.Bytes(), "\n"),
		Images:  map[string]*writer.Image{"Im0": img},
	}, nil
}

func drawImageOp(b *bytes.Buffer, name string, box coords.Rect) {
	fmt.Fprintf(b, "q %s 0 0 %s %s %s cm /%s Do Q\n",
		num(box.Width()), num(box.Height()), num(box.LLX), num(box.LLY), name)
}

// textLayer emits the invisible text runs: render mode 3, one Tm per
// span placing the baseline on the quad's bottom edge, font size from
// the quad height, and horizontal scaling matching the quad width.
func textLayer(spans []Span, log observability.Logger) []byte {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	var b bytes.Buffer
	for _, span := range spans {
		if span.Text == "" {
			continue
		}
		w := span.Quad.Width()
		h := span.Quad.Height()
		if w <= minSpanExtent || h <= minSpanExtent {
			log.Debug("span skipped: degenerate quad",
				observability.String("text", span.Text),
				observability.Float64("width", w),
				observability.Float64("height", h))
			continue
		}
		latin1, err := enc.Bytes([]byte(span.Text))
		if err != nil || len(latin1) == 0 {
			log.Debug("span skipped: not encodable", observability.String("text", span.Text))
			continue
		}
		natural := textWidth(latin1) * h
		if natural <= 0 {
			continue
		}
		angle := span.Quad.BaselineAngle()
		sin, cos := math.Sincos(angle)
		hscale := w / natural * 100
		fmt.Fprintf(&b, "/F1 %s Tf %s Tz %s %s %s %s %s %s Tm ",
			num(h), num(hscale),
			num(cos), num(sin), num(-sin), num(cos),
			num(span.Quad.BL.X), num(span.Quad.BL.Y))
		writeString(&b, latin1)
		b.WriteString(" Tj\n")
	}
	if b.Len() == 0 {
		return nil
	}
	out := make([]byte, 0, b.Len()+16)
	out = append(out, "BT\n3 Tr\n"...)
	out = append(out, b.Bytes()...)
	out = append(out, "ET\n"...)
	return out
}

// writeString emits a literal string operand, escaping delimiters.
func writeString(b *bytes.Buffer, s []byte) {
	b.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
}

// rgbImage flattens any image into raw 8-bit RGB samples.
func rgbImage(src image.Image) (*writer.Image, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("synth: degenerate image %dx%d", w, h)
	}
	data := make([]byte, 0, w*h*3)
	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w*4; x += 4 {
				data = append(data, row[x], row[x+1], row[x+2])
			}
		}
	} else {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, bl, _ := src.At(x, y).RGBA()
				data = append(data, byte(r>>8), byte(g>>8), byte(bl>>8))
			}
		}
	}
	return &writer.Image{Width: w, Height: h, Data: data}, nil
}

func num(f float64) string {
	f = math.Round(f*1e5) / 1e5
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
