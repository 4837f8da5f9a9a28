package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument_DropsEmptyPagesAndRenumbers(t *testing.T) {
	doc := NewDocument([]string{"first", "  \n ", "third"})

	assert.Equal(t, 2, doc.Len())
	p0, ok := doc.Page(0)
	assert.True(t, ok)
	assert.Equal(t, "first", p0)
	p1, ok := doc.Page(1)
	assert.True(t, ok)
	assert.Equal(t, "third", p1)
	_, ok = doc.Page(2)
	assert.False(t, ok)
	_, ok = doc.Page(-1)
	assert.False(t, ok)
}

func TestDocument_Empty(t *testing.T) {
	assert.True(t, NewDocument(nil).Empty())
	assert.True(t, NewDocument([]string{"", " "}).Empty())
	assert.False(t, NewDocument([]string{"x"}).Empty())
}

func TestDocument_Flatten(t *testing.T) {
	doc := NewDocument([]string{"a", "b", "c"})
	assert.Equal(t, "a\n\f\nb\n\f\nc", doc.Flatten())
	assert.Equal(t, "", NewDocument(nil).Flatten())
}

func TestDocument_PagesIsCopy(t *testing.T) {
	doc := NewDocument([]string{"a"})
	pages := doc.Pages()
	pages[0] = "mutated"
	p, _ := doc.Page(0)
	assert.Equal(t, "a", p)
}
