// Command scanlayer converts scanned page images into a searchable PDF,
// or burns redaction rectangles into a flattened one.
//
//	scanlayer -o out.pdf page1.png page2.jpg
//	scanlayer -mode redact -redact 0:72,600,200,40 -o out.pdf page1.png
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/scanlayer/scanlayer/coords"
	"github.com/scanlayer/scanlayer/observability"
	"github.com/scanlayer/scanlayer/ocr"
	"github.com/scanlayer/scanlayer/ocr/tesseract"
	"github.com/scanlayer/scanlayer/pagemodel"
	"github.com/scanlayer/scanlayer/pipeline"
	"github.com/scanlayer/scanlayer/redact"
	"github.com/scanlayer/scanlayer/skew"
)

type options struct {
	outPath  string
	mode     string
	langs    []string
	quality  ocr.Quality
	correct  bool
	scale    float64
	bands    int
	dpi      float64
	skipText bool
	verbose  bool
	marks    []redact.Mark
	inputs   []string
}

// markList parses repeatable -redact flags of the form page:x,y,w,h with
// a zero-based page index and page-unit coordinates.
type markList []redact.Mark

func (m *markList) String() string { return fmt.Sprintf("%d marks", len(*m)) }

func (m *markList) Set(s string) error {
	page, rect, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("want page:x,y,w,h, got %q", s)
	}
	p, err := strconv.Atoi(page)
	if err != nil {
		return fmt.Errorf("bad page index %q: %w", page, err)
	}
	parts := strings.Split(rect, ",")
	if len(parts) != 4 {
		return fmt.Errorf("want page:x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, part := range parts {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("bad coordinate %q: %w", part, err)
		}
	}
	*m = append(*m, redact.Mark{
		Page: p,
		Rect: coords.Rect{LLX: v[0], LLY: v[1], URX: v[0] + v[2], URY: v[1] + v[3]},
	})
	return nil
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scanlayer: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "scanlayer: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	var marks markList
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: scanlayer [flags] <image>...\n")
		flag.PrintDefaults()
	}
	out := flag.String("o", "out.pdf", "Output PDF path")
	mode := flag.String("mode", "ocr", "Processing mode: ocr or redact")
	lang := flag.String("lang", "", "Comma-separated language hints (e.g. eng,deu)")
	quality := flag.String("quality", "accurate", "Recognition quality: fast or accurate")
	correct := flag.Bool("correct", true, "Enable dictionary-based text correction")
	scale := flag.Float64("scale", 0, "Rasterization scale in pixels per page unit (0 = default)")
	bands := flag.Int("bands", 0, "Horizontal bands in the skew model (0 = default)")
	dpi := flag.Float64("dpi", 300, "Resolution the input images were scanned at")
	skipText := flag.Bool("skip-text", false, "Copy pages with existing text through unrecognized")
	verbose := flag.Bool("v", false, "Log per-page diagnostics to stderr")
	flag.Var(&marks, "redact", "Redaction mark as page:x,y,w,h in page units (repeatable)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return options{}, fmt.Errorf("no input images")
	}
	switch *mode {
	case "ocr", "redact":
	default:
		return options{}, fmt.Errorf("unknown mode %q", *mode)
	}
	switch *quality {
	case "fast":
		opts.quality = ocr.QualityFast
	case "accurate":
		opts.quality = ocr.QualityAccurate
	default:
		return options{}, fmt.Errorf("unknown quality %q", *quality)
	}
	if *mode == "redact" && len(marks) == 0 {
		return options{}, fmt.Errorf("redact mode needs at least one -redact mark")
	}
	if *lang != "" {
		for _, l := range strings.Split(*lang, ",") {
			if l = strings.TrimSpace(l); l != "" {
				opts.langs = append(opts.langs, l)
			}
		}
	}
	opts.outPath = *out
	opts.mode = *mode
	opts.correct = *correct
	opts.scale = *scale
	opts.bands = *bands
	opts.dpi = *dpi
	opts.skipText = *skipText
	opts.verbose = *verbose
	opts.marks = marks
	opts.inputs = flag.Args()
	return opts, nil
}

func run(opts options) error {
	doc, err := loadImages(opts.inputs, opts.dpi)
	if err != nil {
		return err
	}

	var log observability.Logger = observability.NopLogger{}
	if opts.verbose {
		log = observability.CallbackLogger(func(line string) {
			fmt.Fprintln(os.Stderr, line)
		})
	}

	conv := pipeline.New(tesseract.New(), pipeline.Options{
		Languages:          opts.langs,
		Quality:            opts.quality,
		LanguageCorrection: opts.correct,
		RenderScale:        opts.scale,
		RedactionScale:     opts.scale,
		SkipPagesWithText:  opts.skipText,
		Skew:               skew.Config{Bands: opts.bands},
		Logger:             log,
		Progress: func(page, total int) {
			fmt.Fprintf(os.Stderr, "page %d/%d\n", page, total)
		},
	})

	f, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.outPath, err)
	}
	defer f.Close()

	ctx := context.Background()
	switch opts.mode {
	case "redact":
		err = conv.Redact(ctx, doc, opts.marks, f)
	default:
		err = conv.Convert(ctx, doc, f)
	}
	if err != nil {
		os.Remove(opts.outPath)
		return err
	}
	return f.Close()
}

func loadImages(paths []string, dpi float64) (*pagemodel.ImageDocument, error) {
	imgs := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		imgs = append(imgs, img)
	}
	return pagemodel.NewImageDocument(imgs, pagemodel.WithDPI(dpi))
}
