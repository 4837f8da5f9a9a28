package pdftext

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/stage"
)

// OCR recognizes text in a PDF that has no usable text layer and returns
// the raw text of each page.
type OCR interface {
	Recognize(ctx context.Context, pdfPath string) ([]string, error)
}

// Extractor turns PDF bytes into a sanitized Document, falling back to OCR
// once when the native text layer is empty.
type Extractor struct {
	reader  PageReader
	ocr     OCR
	inspect func([]byte) (int, error)
	tempDir string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithInspector replaces the structural PDF check.
func WithInspector(fn func([]byte) (int, error)) Option {
	return func(e *Extractor) { e.inspect = fn }
}

// WithTempDir sets where the PDF is staged for the external tools.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tempDir = dir }
}

// NewExtractor creates an Extractor. ocr may be nil, in which case an empty
// text layer is an ExtractionError.
func NewExtractor(reader PageReader, ocr OCR, opts ...Option) *Extractor {
	e := &Extractor{reader: reader, ocr: ocr, inspect: Inspect}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract validates pdf, reads and sanitizes each page, and runs the OCR
// fallback exactly once if no page carries text.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (*Document, error) {
	pageCount, err := e.inspect(pdf)
	if err != nil {
		return nil, &stage.ExtractionError{Err: err}
	}

	path, cleanup, err := e.stage(pdf)
	if err != nil {
		return nil, &stage.ExtractionError{Err: err}
	}
	defer cleanup()

	raw, err := e.reader.ReadPages(ctx, path)
	if err != nil {
		return nil, &stage.ExtractionError{Err: err}
	}
	doc := sanitizePages(raw)
	if !doc.Empty() {
		zap.L().Debug("pdftext: text layer extracted",
			zap.Int("pages", pageCount),
			zap.Int("text_pages", doc.Len()),
		)
		return doc, nil
	}

	if e.ocr == nil {
		return nil, &stage.ExtractionError{Err: eris.New("pdftext: no text layer and no OCR engine configured")}
	}

	zap.L().Info("pdftext: empty text layer, running OCR fallback", zap.Int("pages", pageCount))
	raw, err = e.ocr.Recognize(ctx, path)
	if err != nil {
		return nil, &stage.ExtractionError{Err: eris.Wrap(err, "pdftext: ocr fallback")}
	}
	doc = sanitizePages(raw)
	if doc.Empty() {
		return nil, &stage.ExtractionError{Err: eris.New("pdftext: ocr fallback produced no text")}
	}
	doc.usedOCR = true
	return doc, nil
}

func (e *Extractor) stage(pdf []byte) (string, func(), error) {
	dir, err := os.MkdirTemp(e.tempDir, "intake-pdf-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "pdftext: create temp dir")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			zap.L().Warn("pdftext: remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		cleanup()
		return "", nil, eris.Wrap(err, "pdftext: write temp pdf")
	}
	return path, cleanup, nil
}

func sanitizePages(raw []string) *Document {
	clean := make([]string, len(raw))
	for i, p := range raw {
		clean[i] = Sanitize(p)
	}
	return NewDocument(clean)
}
