// Package ocr provides the OCR engines used when a PDF has no text layer.
package ocr

import (
	"github.com/rotisserie/eris"

	"github.com/ampco/intake-cli/internal/config"
	"github.com/ampco/intake-cli/internal/pdftext"
)

// New returns the OCR engine selected by cfg.Provider. reader re-extracts
// text from OCR-augmented PDFs; runner executes the local tools.
func New(cfg config.OCRConfig, reader pdftext.PageReader, runner pdftext.Runner) (pdftext.OCR, error) {
	if runner == nil {
		runner = pdftext.ExecRunner{}
	}
	switch cfg.Provider {
	case "ocrmypdf", "":
		return NewOCRmyPDF(cfg.OCRmyPDFPath, cfg.Language, reader, runner), nil
	case "tesseract":
		return NewTesseract(TesseractOptions{
			PdfToPPM:  cfg.PdfToPPMPath,
			Tesseract: cfg.TesseractPath,
			Language:  cfg.Language,
			DPI:       cfg.DPI,
		}, runner), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
