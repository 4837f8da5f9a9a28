package parse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ampco/intake-cli/internal/stage"
)

// Kind is the expected type of a record field.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindDecimal
	KindEnum
	KindLines
)

// Field declares one record field.
type Field struct {
	Name string
	Kind Kind
	// Values lists the allowed values of a KindEnum field.
	Values []string
	// Positive and NonNegative bound KindDecimal fields.
	Positive    bool
	NonNegative bool
	// Item is the schema of each element of a KindLines field.
	Item *Schema
}

// Schema declares the fields of one document type and which of them are
// required.
type Schema struct {
	Fields   []Field
	Required []string
	// Aliases maps alternative names to declared field names.
	Aliases map[string]string
}

// Validate checks rec against the schema and returns a copy with typed
// values: string, ISO date string, decimal.Decimal, canonical enum value or
// []Record for line fields. Undeclared fields pass through untouched.
func (s *Schema) Validate(rec Record) (Record, error) {
	return s.validate(rec, "")
}

func (s *Schema) validate(rec Record, prefix string) (Record, error) {
	in := s.canonical(rec)

	for _, name := range s.Required {
		if absent(in[name]) {
			return nil, &stage.ValidationError{Field: prefix + name, Msg: "required field is missing"}
		}
	}

	out := Record{}
	for k, v := range in {
		out[k] = v
	}

	for _, f := range s.Fields {
		v, ok := in[f.Name]
		if !ok {
			continue
		}
		if absent(v) {
			delete(out, f.Name)
			continue
		}
		typed, err := f.coerce(v, prefix)
		if err != nil {
			return nil, err
		}
		out[f.Name] = typed
	}
	return out, nil
}

// canonical resolves aliases. A field given under its own name wins over an
// alias.
func (s *Schema) canonical(rec Record) Record {
	out := Record{}
	var aliased []string
	for k, v := range rec {
		if _, ok := s.Aliases[k]; ok {
			aliased = append(aliased, k)
			continue
		}
		out[k] = v
	}
	sort.Strings(aliased)
	for _, k := range aliased {
		target := s.Aliases[k]
		if _, ok := out[target]; !ok {
			out[target] = rec[k]
		}
	}
	return out
}

func (f Field) coerce(v any, prefix string) (any, error) {
	name := prefix + f.Name
	fail := func(format string, args ...any) error {
		return &stage.ValidationError{Field: name, Msg: fmt.Sprintf(format, args...)}
	}

	switch f.Kind {
	case KindString:
		s, ok := scalarString(v)
		if !ok {
			return nil, fail("expected text, got %s", describe(v))
		}
		return s, nil

	case KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, fail("expected a date string, got %s", describe(v))
		}
		d, err := NormalizeDate(s)
		if err != nil {
			return nil, fail("%v", err)
		}
		return d, nil

	case KindDecimal:
		var d decimal.Decimal
		var err error
		switch x := v.(type) {
		case Number:
			d, err = decimal.NewFromString(string(x))
		case string:
			d, err = ParseDecimal(x)
		default:
			return nil, fail("expected a number, got %s", describe(v))
		}
		if err != nil {
			return nil, fail("%v", err)
		}
		if f.Positive && !d.IsPositive() {
			return nil, fail("must be greater than zero, got %s", d)
		}
		if f.NonNegative && d.IsNegative() {
			return nil, fail("must not be negative, got %s", d)
		}
		return d, nil

	case KindEnum:
		s, ok := scalarString(v)
		if !ok {
			return nil, fail("expected one of %s, got %s", strings.Join(f.Values, ", "), describe(v))
		}
		for _, allowed := range f.Values {
			if strings.EqualFold(s, allowed) {
				return allowed, nil
			}
		}
		return nil, fail("%q is not one of %s", s, strings.Join(f.Values, ", "))

	case KindLines:
		var items []any
		switch x := v.(type) {
		case []any:
			items = x
		case Tuple:
			items = x
		default:
			return nil, fail("expected a list, got %s", describe(v))
		}
		lines := make([]Record, 0, len(items))
		for i, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, &stage.ValidationError{
					Field: fmt.Sprintf("%s[%d]", name, i),
					Msg:   "expected a dict, got " + describe(it),
				}
			}
			line, err := f.Item.validate(Record(m), fmt.Sprintf("%s[%d].", name, i))
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return lines, nil
	}
	return nil, fail("unsupported field kind %d", f.Kind)
}

func absent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case Tuple:
		return len(x) == 0
	}
	return false
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case Number:
		return string(x), true
	}
	return "", false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "a boolean"
	case string:
		return "text"
	case Number:
		return "a number"
	case []any:
		return "a list"
	case Tuple:
		return "a tuple"
	case map[string]any:
		return "a dict"
	}
	return fmt.Sprintf("%T", v)
}

func toString(v any) string { return fmt.Sprint(v) }
