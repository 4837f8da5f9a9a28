package pdftext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var typography = strings.NewReplacer(
	"\u00a0", " ", "\u3000", " ",
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2015", "-", "\u2212", "-", "\ufe63", "-",
	"\u2026", "...", "\u22ef", "...",
	"\u00b7", "\u2022", "\u30fb", "\u2022", "\u2027", "\u2022",
	"\u3010", "[", "\u3011", "]",
	"\ufffd", " ",
)

var (
	reEmail      = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	reURL        = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	reDashRun    = regexp.MustCompile(`-{2,}|[─━]+`)
	rePlusRun    = regexp.MustCompile(`\+{2,}`)
	reUnderscore = regexp.MustCompile(`_{2,}`)
	rePipeRun    = regexp.MustCompile(`\|{2,}`)
	reHSpace     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Sanitize normalizes extracted page text: NFKC (which unfolds ligatures),
// typographic replacements, removal of control and zero-width characters,
// e-mail addresses and URLs, symbol-run collapse and whitespace cleanup.
// Line structure is kept; each line is trimmed and blank runs collapse to one.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = typography.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r' || r == '\f' || r == '\v':
			return '\n'
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)

	s = reEmail.ReplaceAllString(s, " ")
	s = reURL.ReplaceAllString(s, " ")
	s = reDashRun.ReplaceAllString(s, "-")
	s = rePlusRun.ReplaceAllString(s, "+")
	s = reUnderscore.ReplaceAllString(s, "_")
	s = rePipeRun.ReplaceAllString(s, "|")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(reHSpace.ReplaceAllString(ln, " "))
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// DecodeBytes returns b as a string, falling back to Windows-1252 when b is
// not valid UTF-8.
func DecodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
