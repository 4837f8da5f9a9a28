// Package parse turns untrusted model output into validated business records.
// Model output is never evaluated: only `[self.]name = literal` statements are
// accepted.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ampco/intake-cli/internal/stage"
)

// Record maps field names to parsed literal values.
type Record map[string]any

var (
	assignStart = regexp.MustCompile(`^[ \t]*(?:self\.)?([A-Za-z_][A-Za-z0-9_]*)[ \t]*(=)(?:[^=]|$)`)
	fenceLine   = regexp.MustCompile("^[ \t]*(```|~~~)")
)

// ParseAssignments parses the assignment block of a model response.
// Code fences are removed, commentary before the first and after the last
// assignment is ignored, and a later assignment to the same name wins.
// Anything else inside the block fails with *stage.ParseError.
func ParseAssignments(raw string) (Record, error) {
	src := stripFences(raw)
	starts := assignmentLines(src)
	if len(starts) == 0 {
		return nil, &stage.ParseError{Msg: "no assignment statements found", Raw: raw}
	}
	last := starts[len(starts)-1]

	rec := Record{}
	p := &literalParser{src: src}
	lines := lineOffsets(src)

	for {
		skipBlankAndComments(p)
		if p.eof() {
			break
		}

		lineStart := p.pos
		m := assignStart.FindStringSubmatchIndex(src[lineStart:])
		if m == nil {
			if lineStart > last {
				break // trailing commentary
			}
			if len(rec) == 0 {
				skipLine(p)
				continue
			}
			return nil, &stage.ParseError{
				Line: lineOf(lines, lineStart),
				Msg:  fmt.Sprintf("not an assignment: %q", firstLine(src[lineStart:])),
				Raw:  raw,
			}
		}

		name := src[lineStart+m[2] : lineStart+m[3]]
		p.pos = lineStart + m[5]

		v, err := p.value()
		if err != nil {
			return nil, parseError(err, raw, lines, name)
		}
		if err := endOfStatement(p); err != nil {
			return nil, parseError(err, raw, lines, name)
		}
		rec[name] = v
	}

	if len(rec) == 0 {
		return nil, &stage.ParseError{Msg: "no assignment statements found", Raw: raw}
	}
	return rec, nil
}

func parseError(err error, raw string, lines []int, name string) error {
	var se *syntaxError
	if errors.As(err, &se) {
		return &stage.ParseError{
			Line: lineOf(lines, se.pos),
			Msg:  fmt.Sprintf("%s: %s", name, se.msg),
			Raw:  raw,
		}
	}
	return &stage.ParseError{Msg: fmt.Sprintf("%s: %v", name, err), Raw: raw}
}

// endOfStatement requires the rest of the current line to be blank or a
// comment.
func endOfStatement(p *literalParser) error {
	p.skipSpace()
	if p.eof() {
		return nil
	}
	switch p.peek() {
	case '\n':
		p.pos++
		return nil
	case '#':
		skipLine(p)
		return nil
	case ';':
		return p.errorf("multiple statements on one line")
	}
	return p.errorf("unexpected %q after literal", firstLine(p.src[p.pos:]))
}

func skipBlankAndComments(p *literalParser) {
	for !p.eof() {
		save := p.pos
		for !p.eof() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\r') {
			p.pos++
		}
		switch p.peek() {
		case '\n':
			p.pos++
		case '#':
			skipLine(p)
		default:
			p.pos = save
			return
		}
	}
}

func skipLine(p *literalParser) {
	for !p.eof() && p.peek() != '\n' {
		p.pos++
	}
	if !p.eof() {
		p.pos++
	}
}

func stripFences(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, l := range lines {
		// Blank the fence rather than drop it so line numbers still match.
		if fenceLine.MatchString(l) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// assignmentLines returns the byte offsets of lines that open an assignment.
func assignmentLines(src string) []int {
	var out []int
	off := 0
	for _, l := range strings.SplitAfter(src, "\n") {
		if assignStart.MatchString(l) {
			out = append(out, off)
		}
		off += len(l)
	}
	return out
}

func lineOffsets(src string) []int {
	offs := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			offs = append(offs, i+1)
		}
	}
	return offs
}

func lineOf(offs []int, pos int) int {
	return sort.Search(len(offs), func(i int) bool { return offs[i] > pos })
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
