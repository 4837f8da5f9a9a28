package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		pool   []Candidate
		wantID int64
		tier   Tier
	}{
		{
			name:   "exact beats case-insensitive",
			query:  "Acme",
			pool:   []Candidate{{1, "acme"}, {2, "Acme"}},
			wantID: 2,
			tier:   TierExact,
		},
		{
			name:   "case-insensitive",
			query:  "ACME LIGHTING",
			pool:   []Candidate{{4, "Acme Lighting"}, {3, "Acme Lighting Ltd"}},
			wantID: 4,
			tier:   TierCaseInsensitive,
		},
		{
			name:   "prefix",
			query:  "Ampco Hong",
			pool:   []Candidate{{4, "AMPCO Holdings"}, {5, "AMPCO Hong Kong Ltd"}},
			wantID: 5,
			tier:   TierPrefix,
		},
		{
			name:   "prefix ranks by length difference",
			query:  "acme",
			pool:   []Candidate{{20, "acme lighting"}, {12, "acme lights!"}, {15, "acme lamps"}},
			wantID: 15,
			tier:   TierPrefix,
		},
		{
			name:   "normalized tie picks lowest id",
			query:  "ACME, corp.",
			pool:   []Candidate{{3, "Acme Corp"}, {1, "ACME Corporation"}, {2, "Acme Corp."}},
			wantID: 1,
			tier:   TierNormalized,
		},
		{
			name:   "normalized with diacritics",
			query:  "Societe Generale",
			pool:   []Candidate{{9, "Société Générale SA"}},
			wantID: 9,
			tier:   TierNormalized,
		},
		{
			name:   "substring",
			query:  "Bright Star",
			pool:   []Candidate{{10, "Dongguan Bright Star Lighting"}, {9, "Shenzhen Bright Star Co Ltd"}},
			wantID: 9,
			tier:   TierSubstring,
		},
		{
			name:   "substring beats wildcard",
			query:  "Intl Lighting",
			pool:   []Candidate{{11, "International Lighting Corp"}, {12, "Global Intl Lighting"}},
			wantID: 12,
			tier:   TierSubstring,
		},
		{
			name:   "wildcard",
			query:  "Intl Lighting",
			pool:   []Candidate{{11, "International Lighting Corp"}},
			wantID: 11,
			tier:   TierWildcard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Resolve(tt.query, tt.pool)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, m.ID)
			assert.Equal(t, tt.tier, m.Tier, "got tier %s", m.Tier)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	pool := []Candidate{{1, "Acme"}, {2, "Amber Lights"}}

	_, ok := Resolve("Zeta", pool)
	assert.False(t, ok)

	_, ok = Resolve("", pool)
	assert.False(t, ok)

	_, ok = Resolve("Acme", nil)
	assert.False(t, ok)
}

func TestResolve_ShortQueryNoPrefix(t *testing.T) {
	_, ok := Resolve("Am", []Candidate{{1, "Amber"}})
	assert.False(t, ok)
}

func TestResolve_Deterministic(t *testing.T) {
	pool := []Candidate{{7, "Acme Co"}, {5, "ACME Ltd"}, {6, "acme inc"}}
	first, ok := Resolve("Acme LLC", pool)
	require.True(t, ok)
	for range 5 {
		m, _ := Resolve("Acme LLC", pool)
		assert.Equal(t, first, m)
	}
	assert.Equal(t, int64(5), first.ID)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "normalized", TierNormalized.String())
	assert.Equal(t, "unknown", Tier(0).String())
}

// "acme corp" equals "Acme Corp" under case folding, so the case-insensitive
// stage answers before the normalized tie-break is reached. Without that
// candidate the prefix stage answers with the closest length.
func TestResolve_AcmeCorpCaseInsensitiveWins(t *testing.T) {
	pool := []Candidate{{3, "Acme Corp"}, {1, "ACME Corporation"}, {2, "Acme Co"}}

	m, ok := Resolve("acme corp", pool)
	require.True(t, ok)
	assert.Equal(t, int64(3), m.ID)
	assert.Equal(t, TierCaseInsensitive, m.Tier)

	m, ok = Resolve("acme corp", pool[1:])
	require.True(t, ok)
	assert.Equal(t, int64(2), m.ID)
	assert.Equal(t, TierPrefix, m.Tier)
}
