package pdftext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout, stderr []byte
	err            error
	calls          [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.stdout, s.stderr, s.err
}

func TestNewPdfToText_Defaults(t *testing.T) {
	p := NewPdfToText("", nil)
	assert.Equal(t, "pdftotext", p.binPath)
	assert.IsType(t, ExecRunner{}, p.runner)
}

func TestPdfToText_SplitsOnFormFeed(t *testing.T) {
	r := &stubRunner{stdout: []byte("page one\fpage two\f")}
	p := NewPdfToText("/usr/bin/pdftotext", r)

	pages, err := p.ReadPages(context.Background(), "/tmp/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, pages)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "/usr/bin/pdftotext", r.calls[0][0])
	assert.Contains(t, r.calls[0], "-layout")
	assert.Equal(t, "-", r.calls[0][len(r.calls[0])-1])
}

func TestPdfToText_KeepsInteriorEmptyPages(t *testing.T) {
	r := &stubRunner{stdout: []byte("one\f\fthree\f")}
	pages, err := NewPdfToText("", r).ReadPages(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "", "three"}, pages)
}

func TestPdfToText_Error(t *testing.T) {
	r := &stubRunner{stderr: []byte("Syntax Error: broken xref\n"), err: errors.New("exit status 1")}
	_, err := NewPdfToText("", r).ReadPages(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken xref")
}
