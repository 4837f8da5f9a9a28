package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are dropped from the end of a normalized name. Dotted forms
// such as "L.L.C." reach this set with their dots already removed.
var legalSuffixes = map[string]bool{
	"llc": true, "inc": true, "incorporated": true,
	"corp": true, "corporation": true,
	"co": true, "company": true,
	"ltd": true, "limited": true,
	"lp": true, "llp": true, "pllc": true,
	"pc": true, "pa": true, "plc": true,
	"dba": true, "na": true,
	"gmbh": true, "ag": true, "sa": true, "bv": true, "pty": true, "srl": true,
}

var (
	folder       = cases.Fold()
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// Fold returns s case-folded for caseless comparison.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// Normalize reduces a company, person or product name to a comparable key:
//  1. Removing diacritics
//  2. Folding case
//  3. Replacing "&" with "and" and dropping dots and apostrophes
//  4. Turning other punctuation into spaces and collapsing whitespace
//  5. Dropping trailing legal suffixes (Inc, LLC, Corp, Co, Ltd, ...)
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if s, _, err := transform.String(t, name); err == nil {
		name = s
	}

	name = folder.String(name)
	name = strings.NewReplacer(
		"&", " and ",
		".", "",
		"'", "",
		"’", "",
	).Replace(name)
	name = punctRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(multiSpaceRe.ReplaceAllString(name, " "))

	words := strings.Fields(name)
	for len(words) > 1 && legalSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
