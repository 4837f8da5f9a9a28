package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ISODate is the normalized date layout.
const ISODate = "2006-01-02"

var (
	reISO        = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[T ]\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?\s*(?:Z|[+-]\d{2}:?\d{2})?)?$`)
	reNumeric    = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})$`)
	reMonthDay   = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	reDayMonth   = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
	reDayMonDash = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]+)-(\d{4})$`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// NormalizeDate converts a printed date to ISO 2006-01-02. Numeric dates are
// read month first unless the first number cannot be a month.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)

	if m := reISO.FindStringSubmatch(s); m != nil {
		return build(s, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := reNumeric.FindStringSubmatch(s); m != nil {
		first, second := atoi(m[1]), atoi(m[2])
		if first > 12 {
			return build(s, atoi(m[3]), second, first)
		}
		return build(s, atoi(m[3]), first, second)
	}
	if m := reMonthDay.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[1])]; ok {
			return build(s, atoi(m[3]), int(mon), atoi(m[2]))
		}
	}
	if m := reDayMonth.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[2])]; ok {
			return build(s, atoi(m[3]), int(mon), atoi(m[1]))
		}
	}
	if m := reDayMonDash.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[2])]; ok {
			return build(s, atoi(m[3]), int(mon), atoi(m[1]))
		}
	}

	return "", eris.Errorf("unrecognized date %q", s)
}

func build(src string, year, month, day int) (string, error) {
	if month < 1 || month > 12 {
		return "", eris.Errorf("invalid month in date %q", src)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so Feb 30 comes back as March.
	if t.Day() != day || int(t.Month()) != month {
		return "", eris.Errorf("invalid day in date %q", src)
	}
	return t.Format(ISODate), nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
