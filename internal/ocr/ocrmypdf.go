package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ampco/intake-cli/internal/pdftext"
)

// OCRmyPDF adds a text layer with the ocrmypdf CLI and re-extracts it.
type OCRmyPDF struct {
	binPath  string
	language string
	reader   pdftext.PageReader
	runner   pdftext.Runner
}

// NewOCRmyPDF creates an OCRmyPDF engine. Empty binPath means "ocrmypdf".
func NewOCRmyPDF(binPath, language string, reader pdftext.PageReader, runner pdftext.Runner) *OCRmyPDF {
	if binPath == "" {
		binPath = "ocrmypdf"
	}
	if language == "" {
		language = "eng"
	}
	return &OCRmyPDF{binPath: binPath, language: language, reader: reader, runner: runner}
}

// Recognize force-OCRs every page into a sibling file and reads it back.
func (o *OCRmyPDF) Recognize(ctx context.Context, pdfPath string) ([]string, error) {
	outPath := filepath.Join(filepath.Dir(pdfPath), "ocr-"+filepath.Base(pdfPath))
	defer os.Remove(outPath) //nolint:errcheck

	_, stderr, err := o.runner.Run(ctx, o.binPath, "--force-ocr", "--quiet", "-l", o.language, pdfPath, outPath)
	if err != nil {
		return nil, eris.Wrapf(err, "ocr: ocrmypdf: %s", strings.TrimSpace(string(stderr)))
	}
	pages, err := o.reader.ReadPages(ctx, outPath)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: read ocrmypdf output")
	}
	return pages, nil
}
