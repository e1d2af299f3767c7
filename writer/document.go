// Package writer emits the output document as a one-way stream: pages
// are appended in order, each is serialized the moment it is added, and
// nothing written can be revisited. The cross-reference table and trailer
// are produced at Close.
package writer

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/scanlayer/scanlayer/coords"
)

var errClosed = errors.New("writer: document closed")

// Page is one output page, write-once. All five box rectangles are
// declared equal to Box. Content holds uncompressed content stream
// operators; Images maps resource names to image XObjects the content
// references.
type Page struct {
	Box      coords.Rect
	Content  []byte
	Images   map[string]*Image
	UsesFont bool
}

// Image is an 8-bit RGB image XObject.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// Document streams a PDF to an underlying writer.
type Document struct {
	w       io.Writer
	off     int64
	offsets map[int]int64
	nextNum int

	catalog  Ref
	pages    Ref
	font     Ref
	pageRefs []Ref

	// The first page's rectangle seeds the page tree's size declaration.
	firstBox *coords.Rect
	fontUsed bool
	closed   bool
}

// NewDocument writes the header and prepares the object stream.
func NewDocument(w io.Writer) (*Document, error) {
	d := &Document{
		w:       w,
		offsets: make(map[int]int64),
		nextNum: 1,
	}
	d.catalog = d.reserve()
	d.pages = d.reserve()
	d.font = d.reserve()
	if err := d.writeRaw([]byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")); err != nil {
		return nil, fmt.Errorf("writer: header: %w", err)
	}
	return d, nil
}

func (d *Document) reserve() Ref {
	ref := Ref{Num: d.nextNum}
	d.nextNum++
	return ref
}

func (d *Document) writeRaw(p []byte) error {
	n, err := d.w.Write(p)
	d.off += int64(n)
	return err
}

func (d *Document) writeObject(ref Ref, obj interface{}) error {
	d.offsets[ref.Num] = d.off
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	appendObject(&buf, obj)
	buf.WriteString("\nendobj\n")
	return d.writeRaw(buf.Bytes())
}

// AddPage appends a page to the document. Once this returns the page is
// on the wire and cannot be altered.
func (d *Document) AddPage(p *Page) error {
	if d.closed {
		return errClosed
	}
	resources := Dict{}
	if p.UsesFont {
		d.fontUsed = true
		resources["Font"] = Dict{"F1": d.font}
	}
	if len(p.Images) > 0 {
		names := make([]string, 0, len(p.Images))
		for name := range p.Images {
			names = append(names, name)
		}
		sort.Strings(names)
		xobjects := Dict{}
		for _, name := range names {
			ref := d.reserve()
			if err := d.writeObject(ref, imageStream(p.Images[name])); err != nil {
				return fmt.Errorf("writer: image %s: %w", name, err)
			}
			xobjects[Name(name)] = ref
		}
		resources["XObject"] = xobjects
	}

	contentRef := d.reserve()
	compressed, err := deflate(p.Content)
	if err != nil {
		return fmt.Errorf("writer: content: %w", err)
	}
	content := &Stream{
		Dict: Dict{"Filter": Name("FlateDecode")},
		Data: compressed,
	}
	if err := d.writeObject(contentRef, content); err != nil {
		return fmt.Errorf("writer: content: %w", err)
	}

	box := rectArray(p.Box)
	pageRef := d.reserve()
	pageDict := Dict{
		"Type":      Name("Page"),
		"Parent":    d.pages,
		"MediaBox":  box,
		"CropBox":   box,
		"TrimBox":   box,
		"BleedBox":  box,
		"ArtBox":    box,
		"Resources": resources,
		"Contents":  contentRef,
	}
	if err := d.writeObject(pageRef, pageDict); err != nil {
		return fmt.Errorf("writer: page: %w", err)
	}
	d.pageRefs = append(d.pageRefs, pageRef)
	if d.firstBox == nil {
		b := p.Box
		d.firstBox = &b
	}
	return nil
}

// Close writes the shared font, the page tree, the catalog, the
// cross-reference table, and the trailer. The document must contain at
// least one page.
func (d *Document) Close() error {
	if d.closed {
		return errClosed
	}
	d.closed = true
	if len(d.pageRefs) == 0 {
		return errors.New("writer: document has no pages")
	}

	font := Dict{
		"Type":     Name("Font"),
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Helvetica"),
		"Encoding": Name("WinAnsiEncoding"),
	}
	if err := d.writeObject(d.font, font); err != nil {
		return fmt.Errorf("writer: font: %w", err)
	}

	kids := make(Array, len(d.pageRefs))
	for i, r := range d.pageRefs {
		kids[i] = r
	}
	pagesDict := Dict{
		"Type":     Name("Pages"),
		"Count":    len(d.pageRefs),
		"Kids":     kids,
		"MediaBox": rectArray(*d.firstBox),
	}
	if err := d.writeObject(d.pages, pagesDict); err != nil {
		return fmt.Errorf("writer: pages: %w", err)
	}
	catalog := Dict{
		"Type":  Name("Catalog"),
		"Pages": d.pages,
	}
	if err := d.writeObject(d.catalog, catalog); err != nil {
		return fmt.Errorf("writer: catalog: %w", err)
	}

	xrefOff := d.off
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "xref\n0 %d\n", d.nextNum)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < d.nextNum; num++ {
		off, ok := d.offsets[num]
		if !ok {
			buf.WriteString("0000000000 65535 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<</Root %d 0 R /Size %d>>\nstartxref\n%d\n%%%%EOF\n",
		d.catalog.Num, d.nextNum, xrefOff)
	if err := d.writeRaw(buf.Bytes()); err != nil {
		return fmt.Errorf("writer: trailer: %w", err)
	}
	return nil
}

// PageCount returns the number of pages written so far.
func (d *Document) PageCount() int { return len(d.pageRefs) }

func rectArray(r coords.Rect) Array {
	return Array{r.LLX, r.LLY, r.URX, r.URY}
}

func imageStream(img *Image) *Stream {
	data, err := deflate(img.Data)
	dict := Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            img.Width,
		"Height":           img.Height,
		"ColorSpace":       Name("DeviceRGB"),
		"BitsPerComponent": 8,
		"Filter":           Name("FlateDecode"),
	}
	if err != nil {
		// zlib over a bytes.Buffer cannot fail; keep the raw data rather
		// than lose the page.
		delete(dict, "Filter")
		data = img.Data
	}
	return &Stream{Dict: dict, Data: data}
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
