package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/ampco/intake-cli/internal/intake"
	"github.com/ampco/intake-cli/internal/stage"
)

// printResult writes res as indented JSON. A flow error becomes a single
// stage-tagged error for cobra to report.
func printResult(out io.Writer, res *intake.Result, err error) error {
	if res != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return eris.Wrap(encErr, "encode result")
		}
	}
	if err != nil {
		return eris.New(stage.Message(err))
	}
	return nil
}

// printMessages writes the per-run messages, one per line.
func printMessages(out io.Writer, res *intake.Result) {
	if res == nil {
		return
	}
	for _, m := range res.Messages {
		_, _ = fmt.Fprintln(out, m)
	}
}
