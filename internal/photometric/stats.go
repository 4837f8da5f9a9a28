package photometric

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ExpectedHeaders is the column set the photometric_table prompt asks for.
// Statistics are only added to tables with exactly these headers.
var ExpectedHeaders = []string{
	"Product Model",
	"Product Number",
	"Remarks",
	"CCT (K)",
	"Luminous Flux (lm)",
	"Luminous Efficacy (lm/W)",
	"Power (W)",
	"Current (A)",
	"Power Factor",
	"Ra",
	"R9",
	"CIE 1931 (x, y)",
}

// statColumns maps numeric headers to their output precision; -1 rounds
// to an integer.
var statColumns = map[string]int{
	"CCT (K)":                  -1,
	"Luminous Flux (lm)":       -1,
	"Luminous Efficacy (lm/W)": 2,
	"Power (W)":                2,
	"Current (A)":              4,
	"Power Factor":             4,
	"Ra":                       1,
	"R9":                       1,
}

var (
	numberPattern = regexp.MustCompile(`[-+]?\d+(?:,\d{3})*(?:\.\d+)?`)
	signedPair    = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s*,\s*([-+]?\d+(?:\.\d+)?)`)
	dashCell      = regexp.MustCompile(`^:?-+:?$`)
)

// InsertStatsRows renumbers the samples of the Product category table as
// #1..#n and appends Min, Max and Average rows. Markdown whose table does
// not carry ExpectedHeaders is returned unchanged, as is any earlier set of
// statistics rows, which is replaced.
func InsertStatsRows(md string) string {
	if md == "" {
		return md
	}
	lines := strings.Split(md, "\n")

	heading := -1
	for i, l := range lines {
		s := strings.ToLower(strings.TrimSpace(l))
		if strings.HasPrefix(s, "###") && strings.Contains(s, strings.ToLower(SectionHeading)) {
			heading = i
			break
		}
	}
	if heading < 0 {
		return md
	}

	start := heading + 1
	for start < len(lines) && !strings.Contains(lines[start], "|") {
		start++
	}
	end := start
	for end < len(lines) && strings.Contains(lines[end], "|") {
		end++
	}
	if end-start < 2 {
		return md
	}

	header := splitRow(lines[start])
	if !slices.Equal(header, ExpectedHeaders) {
		return md
	}
	width := len(header)
	col := func(name string) int { return slices.Index(header, name) }

	var samples [][]string
	for _, l := range lines[start+2 : end] {
		cells := fit(splitRow(l), width)
		if allDashes(cells) || statLabels[strings.ToLower(cells[0])] {
			continue
		}
		samples = append(samples, cells)
	}
	if len(samples) == 0 {
		return md
	}

	numbers := col("Product Number")
	for i, row := range samples {
		row[numbers] = fmt.Sprintf("#%d", i+1)
	}

	values := map[int][]float64{}
	for name := range statColumns {
		idx := col(name)
		for _, row := range samples {
			if v, ok := parseNumeric(row[idx]); ok {
				values[idx] = append(values[idx], v)
			}
		}
	}
	cieIdx := col("CIE 1931 (x, y)")
	var xs, ys []float64
	for _, row := range samples {
		if m := signedPair.FindStringSubmatch(row[cieIdx]); m != nil {
			x, errX := strconv.ParseFloat(m[1], 64)
			y, errY := strconv.ParseFloat(m[2], 64)
			if errX == nil && errY == nil {
				xs = append(xs, x)
				ys = append(ys, y)
			}
		}
	}

	out := make([]string, 0, len(lines)+3)
	out = append(out, lines[:start+2]...)
	for _, row := range samples {
		out = append(out, joinRow(row))
	}
	for _, agg := range []struct {
		label string
		fn    func([]float64) float64
	}{
		{"Min", slices.Min[[]float64, float64]},
		{"Max", slices.Max[[]float64, float64]},
		{"Average", mean},
	} {
		row := make([]string, width)
		row[0] = agg.label
		for name, prec := range statColumns {
			idx := col(name)
			if vs := values[idx]; len(vs) > 0 {
				row[idx] = formatStat(agg.fn(vs), prec)
			}
		}
		if len(xs) > 0 {
			row[cieIdx] = fmt.Sprintf("%.4f, %.4f", agg.fn(xs), agg.fn(ys))
		}
		out = append(out, joinRow(row))
	}
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	cells := strings.Split(s, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func joinRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func fit(cells []string, width int) []string {
	if len(cells) > width {
		return cells[:width]
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

func allDashes(cells []string) bool {
	for _, c := range cells {
		if !dashCell.MatchString(c) {
			return false
		}
	}
	return true
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(strings.NewReplacer("K", "", "k", "").Replace(s))
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	return v, err == nil
}

func formatStat(v float64, prec int) string {
	if prec < 0 {
		return strconv.FormatFloat(math.RoundToEven(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
