package pdftext

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/stage"
)

type fakeReader struct {
	pages []string
	err   error
	paths []string
}

func (f *fakeReader) ReadPages(_ context.Context, path string) ([]string, error) {
	f.paths = append(f.paths, path)
	return f.pages, f.err
}

type fakeOCR struct {
	pages []string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

func okInspect([]byte) (int, error) { return 2, nil }

func newTestExtractor(r PageReader, o OCR) *Extractor {
	return NewExtractor(r, o, WithInspector(okInspect))
}

func TestExtract_TextLayerSkipsOCR(t *testing.T) {
	reader := &fakeReader{pages: []string{"PO 4521  ACME", "Line 1"}}
	ocr := &fakeOCR{pages: []string{"should not be used"}}

	doc, err := newTestExtractor(reader, ocr).Extract(context.Background(), []byte("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, 0, ocr.calls)
	assert.False(t, doc.UsedOCR())
	assert.Equal(t, []string{"PO 4521 ACME", "Line 1"}, doc.Pages())
}

func TestExtract_StagesBytesForReader(t *testing.T) {
	var seen []byte
	reader := readerFunc(func(path string) ([]string, error) {
		b, err := os.ReadFile(path)
		seen = b
		return []string{"x"}, err
	})

	_, err := newTestExtractor(reader, nil).Extract(context.Background(), []byte("%PDF-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-bytes", string(seen))
}

func TestExtract_EmptyTextLayerRunsOCROnce(t *testing.T) {
	reader := &fakeReader{pages: []string{"", "  \n"}}
	ocr := &fakeOCR{pages: []string{"scanned page"}}

	doc, err := newTestExtractor(reader, ocr).Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, 1, ocr.calls)
	assert.True(t, doc.UsedOCR())
	assert.Equal(t, "scanned page", doc.Flatten())
}

func TestExtract_OCRAlsoEmpty(t *testing.T) {
	reader := &fakeReader{pages: []string{""}}
	ocr := &fakeOCR{pages: []string{"\u200b", ""}}

	_, err := newTestExtractor(reader, ocr).Extract(context.Background(), []byte("%PDF"))
	require.Error(t, err)

	assert.Equal(t, 1, ocr.calls)
	var ee *stage.ExtractionError
	assert.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "ocr fallback produced no text")
}

func TestExtract_OCRFails(t *testing.T) {
	reader := &fakeReader{pages: nil}
	ocr := &fakeOCR{err: errors.New("tesseract missing")}

	_, err := newTestExtractor(reader, ocr).Extract(context.Background(), []byte("%PDF"))
	require.Error(t, err)
	assert.Equal(t, 1, ocr.calls)
	name, ok := stage.Of(err)
	require.True(t, ok)
	assert.Equal(t, stage.Extract, name)
}

func TestExtract_NoOCRConfigured(t *testing.T) {
	_, err := newTestExtractor(&fakeReader{}, nil).Extract(context.Background(), []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no OCR engine configured")
}

func TestExtract_InvalidStructure(t *testing.T) {
	reader := &fakeReader{pages: []string{"text"}}
	ext := NewExtractor(reader, nil) // real Inspect

	_, err := ext.Extract(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	var ee *stage.ExtractionError
	assert.ErrorAs(t, err, &ee)
	assert.Empty(t, reader.paths)
}

func TestExtract_ReaderError(t *testing.T) {
	reader := &fakeReader{err: errors.New("pdftotext: exit 1")}
	_, err := newTestExtractor(reader, &fakeOCR{}).Extract(context.Background(), []byte("%PDF"))
	require.Error(t, err)
	var ee *stage.ExtractionError
	assert.ErrorAs(t, err, &ee)
}

type readerFunc func(path string) ([]string, error)

func (f readerFunc) ReadPages(_ context.Context, path string) ([]string, error) { return f(path) }
