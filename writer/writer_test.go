package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/scanlayer/scanlayer/coords"
)

var letter = coords.Rect{URX: 612, URY: 792}

func buildDoc(t *testing.T, pages ...*Page) []byte {
	t.Helper()
	var buf bytes.Buffer
	doc, err := NewDocument(&buf)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	for i, p := range pages {
		if err := doc.AddPage(p); err != nil {
			t.Fatalf("AddPage(%d) error = %v", i, err)
		}
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestDocumentStructure(t *testing.T) {
	out := buildDoc(t,
		&Page{Box: letter, Content: []byte("q Q"), UsesFont: true},
		&Page{Box: letter, Content: []byte("q Q")},
	)
	s := string(out)
	if !strings.HasPrefix(s, "%PDF-1.7\n") {
		t.Fatalf("missing header: %q", s[:16])
	}
	if !strings.HasSuffix(s, "%%EOF\n") {
		t.Fatalf("missing EOF marker: %q", s[len(s)-16:])
	}
	for _, want := range []string{"/Type /Catalog", "/Type /Pages", "/Count 2", "/BaseFont /Helvetica", "/MediaBox [0 0 612 792]", "/ArtBox [0 0 612 792]"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q", want)
		}
	}
}

func TestDocumentXRefOffsets(t *testing.T) {
	out := buildDoc(t, &Page{Box: letter, Content: []byte("q Q")})
	s := string(out)

	i := strings.LastIndex(s, "xref\n")
	if i < 0 {
		t.Fatal("no xref table")
	}
	lines := strings.Split(s[i:], "\n")
	// lines[1] is "0 N"; entries follow.
	var entries []string
	for _, l := range lines[2:] {
		if len(l) == 19 && (strings.HasSuffix(l, "n ") || strings.HasSuffix(l, "f ")) {
			entries = append(entries, l)
		}
	}
	for num, entry := range entries {
		if strings.HasSuffix(entry, "f ") {
			continue
		}
		off, err := strconv.Atoi(strings.TrimLeft(entry[:10], "0"))
		if err != nil {
			t.Fatalf("bad offset %q: %v", entry, err)
		}
		want := fmt.Sprintf("%d 0 obj", num)
		if !strings.HasPrefix(s[off:], want) {
			t.Fatalf("offset %d for object %d points at %q", off, num, s[off:off+12])
		}
	}

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindStringSubmatch(s)
	if m == nil {
		t.Fatal("no startxref")
	}
	xoff, _ := strconv.Atoi(m[1])
	if !strings.HasPrefix(s[xoff:], "xref") {
		t.Fatalf("startxref %d does not point at xref table", xoff)
	}
}

func TestDocumentDeterministic(t *testing.T) {
	page := func() *Page {
		return &Page{
			Box:     letter,
			Content: []byte("q 612 0 0 792 0 0 cm /Im0 Do Q"),
			Images: map[string]*Image{
				"Im0": {Width: 2, Height: 2, Data: bytes.Repeat([]byte{0x80}, 12)},
				"Im1": {Width: 1, Height: 1, Data: []byte{1, 2, 3}},
			},
			UsesFont: true,
		}
	}
	a := buildDoc(t, page())
	b := buildDoc(t, page())
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different bytes")
	}
}

func TestContentStreamRoundTrip(t *testing.T) {
	content := "q 1 0 0 1 10 20 cm BT 3 Tr (hello) Tj ET Q"
	out := buildDoc(t, &Page{Box: letter, Content: []byte(content), UsesFont: true})

	// First stream in the file is the page content.
	s := string(out)
	i := strings.Index(s, "stream\n")
	j := strings.Index(s, "\nendstream")
	if i < 0 || j < 0 {
		t.Fatal("no stream found")
	}
	zr, err := zlib.NewReader(bytes.NewReader(out[i+len("stream\n") : j]))
	if err != nil {
		t.Fatalf("zlib.NewReader() error = %v", err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(decoded) != content {
		t.Fatalf("content = %q, want %q", decoded, content)
	}
}

func TestImageStreamDeclaresRGB(t *testing.T) {
	out := buildDoc(t, &Page{
		Box:     letter,
		Content: []byte("/Im0 Do"),
		Images:  map[string]*Image{"Im0": {Width: 3, Height: 2, Data: bytes.Repeat([]byte{9}, 18)}},
	})
	s := string(out)
	for _, want := range []string{"/Subtype /Image", "/Width 3", "/Height 2", "/ColorSpace /DeviceRGB", "/BitsPerComponent 8", "/Filter /FlateDecode"} {
		if !strings.Contains(s, want) {
			t.Fatalf("image dict missing %q", want)
		}
	}
}

func TestCloseRequiresPages(t *testing.T) {
	var buf bytes.Buffer
	doc, err := NewDocument(&buf)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if err := doc.Close(); err == nil {
		t.Fatal("expected error closing an empty document")
	}
}

func TestAddPageAfterClose(t *testing.T) {
	var buf bytes.Buffer
	doc, _ := NewDocument(&buf)
	if err := doc.AddPage(&Page{Box: letter, Content: []byte("q Q")}); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := doc.AddPage(&Page{Box: letter}); err == nil {
		t.Fatal("expected error adding a page after close")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{612, "612"},
		{-14.5, "-14.5"},
		{0.123456789, "0.12346"},
		{1e-9, "0"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Fatalf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringEscaping(t *testing.T) {
	var buf bytes.Buffer
	appendObject(&buf, `a(b)c\d`)
	if got := buf.String(); got != `(a\(b\)c\\d)` {
		t.Fatalf("escaped string = %q", got)
	}
}
