// Package llm composes instruction prompts with document text and sends them
// to the configured language model.
package llm

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ContextPlaceholder marks where document text is spliced into a template.
const ContextPlaceholder = "{context}"

var assignmentLine = regexp.MustCompile(`^[ \t]*(?:self\.)?[A-Za-z_][A-Za-z0-9_]*[ \t]*=(?:[^=]|$)`)

// Response is the raw, untrusted text returned by the model.
type Response string

// Context carries caller-supplied values that the model must reproduce
// verbatim, keyed by field name.
type Context struct {
	Forced map[string]string
}

// Compose merges a template with document text. The text replaces every
// {context} placeholder, or is appended after a blank line when the template
// has none. Forced fields are rendered as trailing instruction lines in key
// order.
func Compose(template, text string, extra Context) string {
	var prompt string
	if strings.Contains(template, ContextPlaceholder) {
		prompt = strings.ReplaceAll(template, ContextPlaceholder, text)
	} else {
		prompt = template + "\n\n" + text
	}

	if len(extra.Forced) == 0 {
		return prompt
	}

	keys := make([]string, 0, len(extra.Forced))
	for k := range extra.Forced {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nUse exactly these values, do not infer them from the document:\n")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(strconv.Quote(extra.Forced[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

// ForceField drops every assignment to field from resp (with or without a
// self. prefix) and inserts field = "<value>" just above the first remaining
// assignment, so any preamble the model wrote stays ahead of the block.
func ForceField(resp Response, field, value string) Response {
	header := field + " = " + strconv.Quote(value)

	var kept []string
	at := -1
	for _, line := range strings.Split(string(resp), "\n") {
		if assigns(line, field) {
			continue
		}
		if at < 0 && assignmentLine.MatchString(line) {
			at = len(kept)
		}
		kept = append(kept, line)
	}

	if at < 0 {
		body := strings.TrimSpace(strings.Join(kept, "\n"))
		if body == "" {
			return Response(header)
		}
		return Response(header + "\n" + body)
	}
	kept = append(kept[:at], append([]string{header}, kept[at:]...)...)
	return Response(strings.TrimSpace(strings.Join(kept, "\n")))
}

// ForceSalesperson pins the salesperson assignment to the operator's input.
func ForceSalesperson(resp Response, name string) Response {
	return ForceField(resp, "salesperson", strings.TrimSpace(name))
}

func assigns(line, field string) bool {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "self.")
	if !strings.HasPrefix(s, field) {
		return false
	}
	rest := strings.TrimLeft(s[len(field):], " \t")
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}
