package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/ampco/intake-cli/internal/model"
)

// WriteCSV writes runs as CSV with a header row.
func WriteCSV(w io.Writer, runs []model.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for i := range runs {
		if err := cw.Write(runToRow(&runs[i])); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}
