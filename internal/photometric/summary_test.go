package photometric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyANSI_BinCenters(t *testing.T) {
	for _, b := range ANSIBins {
		got, ok := ClassifyANSI(b.Center.X, b.Center.Y)
		require.True(t, ok, "%dK center", b.CCT)
		assert.Equal(t, b.CCT, got.CCT)
	}
}

func TestClassifyANSI(t *testing.T) {
	b, ok := ClassifyANSI(0.452, 0.410)
	require.True(t, ok)
	assert.Equal(t, 2700, b.CCT)

	_, ok = ClassifyANSI(0.25, 0.25)
	assert.False(t, ok)
}

func TestEstimateCCT(t *testing.T) {
	assert.InDelta(t, 2700, EstimateCCT(0.4578, 0.4101), 100)
	assert.InDelta(t, 6500, EstimateCCT(0.3123, 0.3283), 150)
}

func TestBuildSummary(t *testing.T) {
	md := BuildSummary(SummaryInput{
		Title:       "AL-100",
		GeneratedAt: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		Overall:     "## Summary\n- Consistent CCT\n",
		Table:       "### Product category\n| a |\n| - |\n| 1 |\n",
		Coordinates: []Coordinate{{Label: "#1", X: 0.4578, Y: 0.4101}, {Label: "#2", X: 0.25, Y: 0.25}},
		Filename:    "report.pdf",
		ShareURL:    "https://cloud.example.com/s/abc",
	})

	assert.Contains(t, md, "## AL-100 photometric summary and analysis\n- Report generated on 2025-03-04\n")
	assert.Contains(t, md, "## Overall summary\n## Summary\n- Consistent CCT\n\n### Conclusion & Follow-up Actions\n")
	assert.Contains(t, md, "### Product category\n| a |")
	assert.Contains(t, md, "| #1 | 0.4578 | 0.4101 |")
	assert.Contains(t, md, "| 2700K |")
	assert.Contains(t, md, "| #2 | 0.2500 | 0.2500 |")
	assert.Contains(t, md, "| outside |")
	assert.Contains(t, md, "- Photometric report: [report.pdf](https://cloud.example.com/s/abc)\n")
}

func TestBuildSummary_NoShareNoCoordinates(t *testing.T) {
	md := BuildSummary(SummaryInput{GeneratedAt: time.Now(), Overall: "ok"})
	assert.Contains(t, md, "## Photometric summary and analysis\n")
	assert.NotContains(t, md, "ANSI C78.377")
	assert.NotContains(t, md, "Photometric report:")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("## Title\n\n| a | b |\n| - | - |\n| 1 | 2 |\n\n- [ ] follow up\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Title</h2>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>1</td>")
	assert.Contains(t, html, `type="checkbox"`)
}
