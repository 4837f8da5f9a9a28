package photometric

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryInput carries the pieces of the final report.
type SummaryInput struct {
	Title       string
	GeneratedAt time.Time
	Overall     string // model-written summary
	Table       string // table markdown with statistics rows
	Coordinates []Coordinate
	Filename    string
	ShareURL    string
}

// BuildSummary assembles the report markdown: header, overall summary,
// follow-up checklist, the results table, ANSI binning of each sample and a
// link to the shared source report.
func BuildSummary(in SummaryInput) string {
	var b strings.Builder
	if title := strings.TrimSpace(in.Title); title != "" {
		fmt.Fprintf(&b, "## %s photometric summary and analysis\n", title)
	} else {
		b.WriteString("## Photometric summary and analysis\n")
	}
	fmt.Fprintf(&b, "- Report generated on %s\n\n", in.GeneratedAt.Format("2006-01-02"))

	b.WriteString("## Overall summary\n")
	b.WriteString(strings.TrimSpace(in.Overall))
	b.WriteString("\n\n### Conclusion & Follow-up Actions\n- [ ] \n- [ ] \n- [ ] \n---\n")

	b.WriteString(strings.TrimSpace(in.Table))
	b.WriteString("\n\n")

	if len(in.Coordinates) > 0 {
		b.WriteString("### ANSI C78.377-2015 chromaticity bins\n")
		b.WriteString("| Sample | x | y | Est. CCT (K) | ANSI bin |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, c := range in.Coordinates {
			bin := "outside"
			if bb, ok := ClassifyANSI(c.X, c.Y); ok {
				bin = fmt.Sprintf("%dK", bb.CCT)
			}
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.0f | %s |\n", c.Label, c.X, c.Y, EstimateCCT(c.X, c.Y), bin)
		}
		b.WriteString("\n")
	}

	if in.ShareURL != "" {
		fmt.Fprintf(&b, "- Photometric report: [%s](%s)\n", in.Filename, in.ShareURL)
	}
	return b.String()
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders report markdown, tables and task lists included.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", eris.Wrap(err, "photometric: render html")
	}
	return buf.String(), nil
}
