// Package resolve maps free-text names from model output onto canonical
// records of a remote dataset. Matching runs as a cascade of stages, from
// most to least confident; the first stage with any hit decides.
package resolve

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Tier names the stage that produced a match.
type Tier int

const (
	TierExact Tier = iota + 1
	TierCaseInsensitive
	TierPrefix
	TierNormalized
	TierSubstring
	TierWildcard
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCaseInsensitive:
		return "case_insensitive"
	case TierPrefix:
		return "prefix"
	case TierNormalized:
		return "normalized"
	case TierSubstring:
		return "substring"
	case TierWildcard:
		return "wildcard"
	}
	return "unknown"
}

// MinPrefixRunes is the shortest side a prefix, substring or wildcard hit
// may have.
const MinPrefixRunes = 3

// wildcardPenalty pushes wildcard hits behind every substring hit.
const wildcardPenalty = 1 << 20

// Candidate is one remote record eligible for matching.
type Candidate struct {
	ID   int64
	Name string
}

// Match is the selected candidate and how it was found.
type Match struct {
	Candidate
	Tier Tier
	Rank int
}

// key carries the precomputed forms of a name used across stages.
type key struct {
	raw    string
	folded string
	norm   string
}

func newKey(s string) key {
	s = strings.TrimSpace(s)
	return key{raw: s, folded: Fold(s), norm: Normalize(s)}
}

// stage reports whether cand matches q and with which rank.
type stage func(q, cand key) (Tier, int, bool)

var stages = []stage{
	exactStage,
	caseInsensitiveStage,
	prefixStage,
	normalizedStage,
	substringStage,
}

// Resolve returns the best candidate for query. The second result is false
// when no stage produced a hit.
func Resolve(query string, pool []Candidate) (Match, bool) {
	q := newKey(query)
	if q.raw == "" || len(pool) == 0 {
		return Match{}, false
	}

	keys := make([]key, len(pool))
	for i, c := range pool {
		keys[i] = newKey(c.Name)
	}

	for _, st := range stages {
		var hits []Match
		for i, c := range pool {
			if tier, rank, ok := st(q, keys[i]); ok {
				hits = append(hits, Match{Candidate: c, Tier: tier, Rank: rank})
			}
		}
		if len(hits) > 0 {
			return slices.MinFunc(hits, compareMatches), true
		}
	}
	return Match{}, false
}

func compareMatches(a, b Match) int {
	return cmp.Or(cmp.Compare(a.Rank, b.Rank), cmp.Compare(a.ID, b.ID))
}

func exactStage(q, c key) (Tier, int, bool) {
	return TierExact, 0, q.raw == c.raw
}

func caseInsensitiveStage(q, c key) (Tier, int, bool) {
	return TierCaseInsensitive, 0, q.folded == c.folded
}

func prefixStage(q, c key) (Tier, int, bool) {
	short, long := ordered(q.folded, c.folded)
	if utf8.RuneCountInString(short) < MinPrefixRunes || !strings.HasPrefix(long, short) {
		return TierPrefix, 0, false
	}
	return TierPrefix, lengthDiff(short, long), true
}

func normalizedStage(q, c key) (Tier, int, bool) {
	return TierNormalized, 0, q.norm != "" && q.norm == c.norm
}

func substringStage(q, c key) (Tier, int, bool) {
	short, long := ordered(q.norm, c.norm)
	if utf8.RuneCountInString(short) < MinPrefixRunes {
		return TierSubstring, 0, false
	}
	if strings.Contains(long, short) {
		return TierSubstring, lengthDiff(short, long), true
	}
	if inOrder(strings.ReplaceAll(q.norm, " ", ""), c.norm) {
		return TierWildcard, wildcardPenalty + lengthDiff(q.norm, c.norm), true
	}
	return TierWildcard, 0, false
}

// inOrder reports whether every rune of pattern appears in s, in order.
func inOrder(pattern, s string) bool {
	if pattern == "" {
		return false
	}
	rest := s
	for _, r := range pattern {
		i := strings.IndexRune(rest, r)
		if i < 0 {
			return false
		}
		rest = rest[i+utf8.RuneLen(r):]
	}
	return true
}

func ordered(a, b string) (short, long string) {
	if utf8.RuneCountInString(a) <= utf8.RuneCountInString(b) {
		return a, b
	}
	return b, a
}

func lengthDiff(a, b string) int {
	d := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if d < 0 {
		return -d
	}
	return d
}

// WildcardPattern turns a name into an SQL LIKE pattern matching its
// normalized characters in order, e.g. "Acme" becomes "%a%c%m%e%".
func WildcardPattern(name string) string {
	n := strings.ReplaceAll(Normalize(name), " ", "")
	if n == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte('%')
	for _, r := range n {
		if r == '%' || r == '_' {
			continue
		}
		b.WriteRune(r)
		b.WriteByte('%')
	}
	return b.String()
}
