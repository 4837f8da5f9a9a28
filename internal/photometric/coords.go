// Package photometric post-processes model-generated photometric report
// markdown: coordinate extraction, summary statistics, ANSI binning and
// HTML rendering.
package photometric

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

// SectionHeading is the heading text that introduces the results table.
const SectionHeading = "Product category"

// Coordinate is a labelled CIE 1931 chromaticity point.
type Coordinate struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

var (
	xHeader    = regexp.MustCompile(`(?i)^(?:cie\s*(?:1931)?\s*)?x$`)
	yHeader    = regexp.MustCompile(`(?i)^(?:cie\s*(?:1931)?\s*)?y$`)
	statLabels = map[string]bool{"min": true, "max": true, "average": true}
)

var tableParser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// ScanCoordinates yields the chromaticity points of the table under the
// "Product category" heading. The sequence is lazy and restartable: each
// range re-scans md. Rows without a usable in-range pair are logged and
// skipped.
func ScanCoordinates(md string) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		header, rows := productTable(md)
		if header == nil {
			return
		}

		labelCol, xyCol, xCol, yCol := 0, -1, -1, -1
		for i, h := range header {
			switch {
			case strings.Contains(h, "Product Number"):
				labelCol = i
			case strings.Contains(h, "CIE 1931") && xyCol < 0:
				xyCol = i
			}
			if xHeader.MatchString(h) {
				xCol = i
			}
			if yHeader.MatchString(h) {
				yCol = i
			}
		}

		for _, row := range rows {
			if len(row) == 0 || statLabels[strings.ToLower(row[0])] {
				continue
			}
			label := cell(row, labelCol)
			if label == "" {
				label = cell(row, 0)
			}

			var x, y float64
			var ok bool
			switch {
			case xCol >= 0 && yCol >= 0:
				x, y, ok = separatePair(cell(row, xCol), cell(row, yCol))
			case xyCol >= 0:
				x, y, ok = combinedPair(cell(row, xyCol))
			default:
				x, y, ok = firstPair(row, labelCol)
			}
			if !ok {
				zap.L().Warn("photometric: row has no coordinate pair",
					zap.String("label", label), zap.Strings("cells", row))
				continue
			}
			if x < 0 || x > 1 || y < 0 || y > 1 {
				zap.L().Warn("photometric: coordinate out of range",
					zap.String("label", label), zap.Float64("x", x), zap.Float64("y", y))
				continue
			}
			if !yield(Coordinate{Label: label, X: x, Y: y}) {
				return
			}
		}
	}
}

// productTable returns the header and body rows of the first table in the
// "Product category" section, or nil when there is none.
func productTable(md string) ([]string, [][]string) {
	src := []byte(md)
	doc := tableParser.Parse(text.NewReader(src))

	var heading ast.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading &&
			strings.Contains(strings.ToLower(nodeText(n, src)), strings.ToLower(SectionHeading)) {
			heading = n
			break
		}
	}
	if heading == nil {
		return nil, nil
	}

	for n := heading.NextSibling(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			return nil, nil
		}
		table, ok := n.(*extast.Table)
		if !ok {
			continue
		}

		var header []string
		var rows [][]string
		for r := table.FirstChild(); r != nil; r = r.NextSibling() {
			var cells []string
			for c := r.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, strings.TrimSpace(nodeText(c, src)))
			}
			if r.Kind() == extast.KindTableHeader {
				header = cells
			} else {
				rows = append(rows, cells)
			}
		}
		return header, rows
	}
	return nil, nil
}

// nodeText concatenates the literal text below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func combinedPair(s string) (float64, float64, bool) {
	m := signedPair.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	return separatePair(m[1], m[2])
}

func separatePair(xs, ys string) (float64, float64, bool) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// firstPair takes the first "x, y" cell or the first two numeric cells
// after the label column.
func firstPair(row []string, labelCol int) (float64, float64, bool) {
	var nums []float64
	for i, c := range row {
		if i == labelCol {
			continue
		}
		if x, y, ok := combinedPair(c); ok {
			return x, y, true
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil {
			nums = append(nums, v)
			if len(nums) == 2 {
				return nums[0], nums[1], true
			}
		}
	}
	return 0, 0, false
}
