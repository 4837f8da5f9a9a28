package parse

import (
	"sort"
	"strconv"
	"strings"
)

// Render writes rec back as assignment statements in key order. Parsing the
// output yields an equal Record.
func (rec Record) Render() string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(" = ")
		renderValue(&b, rec[k])
		b.WriteByte('\n')
	}
	return b.String()
}

func renderValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(strconv.Quote(x))
	case Number:
		b.WriteString(string(x))
	case []any:
		b.WriteByte('[')
		renderItems(b, x)
		b.WriteByte(']')
	case Tuple:
		b.WriteByte('(')
		renderItems(b, x)
		if len(x) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			renderValue(b, x[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString(strconv.Quote(toString(x)))
	}
}

func renderItems(b *strings.Builder, items []any) {
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		renderValue(b, it)
	}
}
