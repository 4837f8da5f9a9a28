package ocr

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/pdftext"
)

// TesseractOptions locates the rasterizer and OCR binaries.
type TesseractOptions struct {
	PdfToPPM  string
	Tesseract string
	Language  string
	DPI       int
}

// Tesseract renders pages to PNG with pdftoppm and OCRs each image.
type Tesseract struct {
	opts   TesseractOptions
	runner pdftext.Runner
}

// NewTesseract creates a Tesseract engine, filling empty options with defaults.
func NewTesseract(opts TesseractOptions, runner pdftext.Runner) *Tesseract {
	if opts.PdfToPPM == "" {
		opts.PdfToPPM = "pdftoppm"
	}
	if opts.Tesseract == "" {
		opts.Tesseract = "tesseract"
	}
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	return &Tesseract{opts: opts, runner: runner}
}

// Recognize returns one text entry per rendered page, in page order.
func (t *Tesseract) Recognize(ctx context.Context, pdfPath string) ([]string, error) {
	dir, err := os.MkdirTemp(filepath.Dir(pdfPath), "pages-*")
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create page dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	prefix := filepath.Join(dir, "page")
	_, stderr, err := t.runner.Run(ctx, t.opts.PdfToPPM, "-r", strconv.Itoa(t.opts.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return nil, eris.Wrapf(err, "ocr: pdftoppm: %s", strings.TrimSpace(string(stderr)))
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	if len(images) == 0 {
		return nil, eris.New("ocr: pdftoppm rendered no pages")
	}
	sortPageImages(images)

	pages := make([]string, 0, len(images))
	for _, img := range images {
		out, stderr, err := t.runner.Run(ctx, t.opts.Tesseract, img, "stdout", "-l", t.opts.Language)
		if err != nil {
			// One unreadable page should not discard the rest of the scan.
			zap.L().Warn("ocr: tesseract page failed",
				zap.String("image", filepath.Base(img)),
				zap.String("stderr", strings.TrimSpace(string(stderr))),
				zap.Error(err),
			)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, string(out))
	}
	return pages, nil
}

// sortPageImages orders page-N.png numerically; pdftoppm zero-pads only to
// the width of the largest page number.
func sortPageImages(images []string) {
	num := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), ".png")
		n, _ := strconv.Atoi(base[strings.LastIndex(base, "-")+1:])
		return n
	}
	sort.Slice(images, func(i, j int) bool { return num(images[i]) < num(images[j]) })
}
