package pdftext

import "strings"

// PageBreak separates pages in flattened text.
const PageBreak = "\n\f\n"

// Document holds per-page plain text. Page indices are contiguous from 0.
type Document struct {
	pages   []string
	usedOCR bool
}

// NewDocument builds a Document from page texts in order, dropping pages
// that are empty after trimming so indices stay contiguous.
func NewDocument(pages []string) *Document {
	d := &Document{}
	for _, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		d.pages = append(d.pages, p)
	}
	return d
}

// Len returns the number of non-empty pages.
func (d *Document) Len() int { return len(d.pages) }

// UsedOCR reports whether the text came from the OCR fallback.
func (d *Document) UsedOCR() bool { return d.usedOCR }

// Empty reports whether no page carried text; such a document needs OCR.
func (d *Document) Empty() bool { return len(d.pages) == 0 }

// Page returns the text of page i (0-based).
func (d *Document) Page(i int) (string, bool) {
	if i < 0 || i >= len(d.pages) {
		return "", false
	}
	return d.pages[i], true
}

// Pages returns a copy of the page texts in order.
func (d *Document) Pages() []string {
	out := make([]string, len(d.pages))
	copy(out, d.pages)
	return out
}

// Flatten joins all pages with PageBreak, preserving page order.
func (d *Document) Flatten() string {
	return strings.Join(d.pages, PageBreak)
}
