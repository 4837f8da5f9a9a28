package parse

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var (
	reCurrency = regexp.MustCompile(`^(?:[A-Z]{3}\s*)?(?:[A-Z]{1,2})?[$€£¥₹]?\s*|\s*[$€£¥₹]?(?:\s*[A-Z]{3})?$`)
	reAmount   = regexp.MustCompile(`^[+-]?\d[\d.,' \x{00A0}]*$`)
)

// ParseDecimal reads a printed amount such as "1,234.50", "1.234,50",
// "$ 12" or "1 000". When both '.' and ',' appear the last one is the
// decimal mark; a single ',' followed by exactly three digits groups
// thousands.
func ParseDecimal(s string) (decimal.Decimal, error) {
	src := s
	s = strings.TrimSpace(reCurrency.ReplaceAllString(strings.TrimSpace(s), ""))
	if !reAmount.MatchString(s) {
		return decimal.Decimal{}, eris.Errorf("not a number: %q", src)
	}

	s = strings.NewReplacer(" ", "", "'", "", "\u00a0", "").Replace(s)

	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		mark, group := ",", "."
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			mark, group = ".", ","
		}
		if strings.Count(s, mark) > 1 {
			return decimal.Decimal{}, eris.Errorf("ambiguous separators in %q", src)
		}
		intPart := s[:strings.LastIndex(s, mark)]
		if !groupedThousands(intPart, group) {
			return decimal.Decimal{}, eris.Errorf("misplaced thousands separator in %q", src)
		}
		s = strings.ReplaceAll(s, group, "")
		s = strings.Replace(s, mark, ".", 1)
	case commas == 1:
		if len(s)-strings.Index(s, ",")-1 == 3 {
			s = strings.Replace(s, ",", "", 1)
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case commas > 1:
		if !groupedThousands(s, ",") {
			return decimal.Decimal{}, eris.Errorf("misplaced thousands separator in %q", src)
		}
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		if !groupedThousands(s, ".") {
			return decimal.Decimal{}, eris.Errorf("misplaced thousands separator in %q", src)
		}
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, eris.Errorf("not a number: %q", src)
	}
	return d, nil
}

// groupedThousands reports whether every group after the first has exactly
// three digits.
func groupedThousands(s, sep string) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), sep)
	if parts[0] == "" || (len(parts) > 1 && len(parts[0]) > 3) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
