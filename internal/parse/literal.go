package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Number is a numeric literal kept in its source form so decimals do not
// pass through float64.
type Number string

// Tuple is a parenthesized literal sequence.
type Tuple []any

// syntaxError carries the byte offset of a literal syntax problem.
type syntaxError struct {
	pos int
	msg string
}

func (e *syntaxError) Error() string { return e.msg }

// literalParser reads Python-style literals from src. Values are:
// string, Number, bool, nil (None), []any, Tuple and map[string]any.
type literalParser struct {
	src   string
	pos   int
	depth int // open brackets
}

func (p *literalParser) errorf(format string, args ...any) error {
	return &syntaxError{pos: p.pos, msg: fmt.Sprintf(format, args...)}
}

func (p *literalParser) eof() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// skipSpace skips blanks. Inside brackets newlines and comments are
// insignificant as well.
func (p *literalParser) skipSpace() {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\\' && strings.HasPrefix(p.src[p.pos:], "\\\n"):
			p.pos += 2
		case p.depth > 0 && c == '\n':
			p.pos++
		case p.depth > 0 && c == '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected a literal, found end of input")
	}

	c := p.peek()
	switch {
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '{':
		return p.dict()
	case c == '"' || c == '\'':
		return p.strings(false)
	case (c == 'r' || c == 'R' || c == 'u' || c == 'U') && p.pos+1 < len(p.src) &&
		(p.src[p.pos+1] == '"' || p.src[p.pos+1] == '\''):
		raw := c == 'r' || c == 'R'
		p.pos++
		return p.strings(raw)
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(rune(c)):
		start := p.pos
		word := p.ident()
		switch word {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		p.pos = start
		return nil, p.errorf("unsupported expression %q", word)
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *literalParser) ident() string {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if p.pos == start && !isIdentStart(r) {
			break
		}
		if p.pos > start && !isIdentPart(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *literalParser) sequence(open, close byte) (any, error) {
	start := p.pos
	p.pos++ // open
	p.depth++
	items := []any{}
	trailingComma := false
	for {
		p.skipSpace()
		if p.eof() {
			p.pos = start
			return nil, p.errorf("unclosed %q", open)
		}
		if p.peek() == close {
			p.pos++
			p.depth--
			break
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		trailingComma = false

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			trailingComma = true
		case close:
		default:
			if p.eof() {
				p.pos = start
				return nil, p.errorf("unclosed %q", open)
			}
			return nil, p.errorf("expected ',' or %q, found %q", close, p.peek())
		}
	}

	if open == '(' {
		// (x) is a parenthesized value, (x,) a one-element tuple.
		if len(items) == 1 && !trailingComma {
			return items[0], nil
		}
		return Tuple(items), nil
	}
	return items, nil
}

func (p *literalParser) dict() (any, error) {
	start := p.pos
	p.pos++ // {
	p.depth++
	out := map[string]any{}
	for {
		p.skipSpace()
		if p.eof() {
			p.pos = start
			return nil, p.errorf("unclosed '{'")
		}
		if p.peek() == '}' {
			p.pos++
			p.depth--
			return out, nil
		}

		keyPos := p.pos
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, err := dictKey(k)
		if err != nil {
			p.pos = keyPos
			return nil, p.errorf("%s", err.Error())
		}

		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' after dict key %q", key)
		}
		p.pos++

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			if p.eof() {
				p.pos = start
				return nil, p.errorf("unclosed '{'")
			}
			return nil, p.errorf("expected ',' or '}', found %q", p.peek())
		}
	}
}

func dictKey(k any) (string, error) {
	switch v := k.(type) {
	case string:
		return v, nil
	case Number:
		return string(v), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	default:
		return "", fmt.Errorf("unsupported dict key of type %T", k)
	}
}

// strings reads one string literal and any adjacent literals, which are
// concatenated.
func (p *literalParser) strings(raw bool) (any, error) {
	var b strings.Builder
	for {
		s, err := p.stringLit(raw)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)

		save := p.pos
		p.skipSpace()
		c := p.peek()
		if c == '"' || c == '\'' {
			raw = false
			continue
		}
		if (c == 'r' || c == 'R') && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '"' || p.src[p.pos+1] == '\'') {
			p.pos++
			raw = true
			continue
		}
		p.pos = save
		return b.String(), nil
	}
}

func (p *literalParser) stringLit(raw bool) (string, error) {
	quote := p.src[p.pos]
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3))
	start := p.pos
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for {
		if p.eof() {
			p.pos = start
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case triple && strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3)):
			p.pos += 3
			return b.String(), nil
		case !triple && c == quote:
			p.pos++
			return b.String(), nil
		case !triple && c == '\n':
			p.pos = start
			return "", p.errorf("unterminated string")
		case c == '\\':
			if raw {
				if p.pos+1 < len(p.src) {
					b.WriteString(p.src[p.pos : p.pos+2])
					p.pos += 2
				} else {
					b.WriteByte(c)
					p.pos++
				}
				continue
			}
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *literalParser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf("unterminated string")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\n':
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case 'x', 'u', 'U':
		n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if p.pos+n > len(p.src) {
			return p.errorf("truncated \\%c escape", c)
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return p.errorf("invalid \\%c escape", c)
		}
		p.pos += n
		b.WriteRune(rune(code))
	default:
		// Unknown escapes keep their backslash.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	var b strings.Builder
	if c := p.peek(); c == '-' || c == '+' {
		if c == '-' {
			b.WriteByte('-')
		}
		p.pos++
		p.skipSpace()
	}

	digits, dot, exp := 0, false, false
scan:
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case isDigit(c):
			digits++
			b.WriteByte(c)
		case c == '_' && digits > 0:
		case c == '.' && !dot && !exp:
			dot = true
			b.WriteByte(c)
		case (c == 'e' || c == 'E') && digits > 0 && !exp:
			exp = true
			b.WriteByte(c)
			if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '-' || p.src[p.pos+1] == '+') {
				p.pos++
				b.WriteByte(p.src[p.pos])
			}
		default:
			break scan
		}
		p.pos++
	}
	if digits == 0 {
		p.pos = start
		return nil, p.errorf("malformed number")
	}
	if !p.eof() && isIdentPart(rune(p.src[p.pos])) {
		p.pos = start
		return nil, p.errorf("malformed number")
	}

	n := b.String()
	neg := strings.HasPrefix(n, "-")
	n = strings.TrimPrefix(n, "-")
	if strings.HasPrefix(n, ".") {
		n = "0" + n
	}
	if strings.HasSuffix(n, ".") {
		n += "0"
	}
	if neg {
		n = "-" + n
	}
	return Number(n), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
