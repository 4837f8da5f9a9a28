package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_RejectsNonPDF(t *testing.T) {
	_, err := Inspect([]byte("hello, I am a text file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing %PDF header")
}

func TestInspect_RejectsTruncatedPDF(t *testing.T) {
	_, err := Inspect([]byte("%PDF-1.4\n1 0 obj\n<<"))
	assert.Error(t, err)
}
