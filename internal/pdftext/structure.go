package pdftext

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
)

func init() {
	api.DisableConfigDir()
}

// Inspect parses and validates the PDF structure and returns its page count.
func Inspect(pdf []byte) (int, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(pdf, "\x00\t\r\n "), []byte("%PDF-")) {
		return 0, eris.New("pdftext: missing %PDF header")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, eris.Wrap(err, "pdftext: read pdf structure")
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, eris.Wrap(err, "pdftext: validate pdf structure")
	}
	if ctx.PageCount == 0 {
		return 0, eris.New("pdftext: pdf has no pages")
	}
	return ctx.PageCount, nil
}
