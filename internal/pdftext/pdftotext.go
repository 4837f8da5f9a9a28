package pdftext

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// PageReader returns the raw text of each page of the PDF at path.
type PageReader interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// PdfToText reads page text with the poppler pdftotext CLI.
type PdfToText struct {
	binPath string
	runner  Runner
}

// NewPdfToText creates a PdfToText reader. If binPath is empty, "pdftotext"
// is looked up on PATH. A nil runner uses ExecRunner.
func NewPdfToText(binPath string, runner Runner) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdfToText{binPath: binPath, runner: runner}
}

// ReadPages runs pdftotext over the whole file and splits the output on the
// form feed it emits after every page.
func (p *PdfToText) ReadPages(ctx context.Context, path string) ([]string, error) {
	out, stderr, err := p.runner.Run(ctx, p.binPath, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, eris.Wrapf(err, "pdftext: pdftotext %s: %s", path, strings.TrimSpace(string(stderr)))
	}

	text := DecodeBytes(out)
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}
