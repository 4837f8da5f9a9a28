package odoo

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/resilience"
	"github.com/ampco/intake-cli/internal/resolve"
)

// Finder builds candidate pools for the reference matcher from staged
// search_read queries.
type Finder struct {
	client Client
	limit  int
	retry  resilience.RetryConfig
}

// NewFinder returns a Finder that keeps at most limit candidates per lookup.
func NewFinder(c Client, limit int) *Finder {
	if limit <= 0 {
		limit = 50
	}
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = IsRetryable
	retry.OnRetry = resilience.RetryLogger("odoo", "search_read")
	return &Finder{client: c, limit: limit, retry: retry}
}

// minPrefix is the shortest query prefix tried with ilike.
const minPrefix = 3

// Candidates collects records of model whose field resembles query. The
// "=", "=ilike" and "ilike" domains are merged by id. When those return
// nothing, ilike is retried on ever shorter prefixes of the query, and the
// character wildcard runs only when no prefix hits either.
func (f *Finder) Candidates(ctx context.Context, model, field, query string) ([]resolve.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var out []resolve.Candidate
	seen := make(map[int64]bool)
	add := func(recs []Record) bool {
		for _, r := range recs {
			id := r.ID()
			name := strings.TrimSpace(r.String(field))
			if id == 0 || name == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, resolve.Candidate{ID: id, Name: name})
			if len(out) >= f.limit {
				return true
			}
		}
		return false
	}

	domains := [][]any{
		{[]any{field, "=", query}},
		{[]any{field, "=ilike", query}},
		{[]any{field, "ilike", query}},
	}
	for _, d := range domains {
		recs, err := f.search(ctx, model, field, d)
		if err != nil {
			return nil, err
		}
		if add(recs) {
			return out, nil
		}
	}

	if len(out) == 0 {
		for _, prefix := range queryPrefixes(query) {
			recs, err := f.search(ctx, model, field, []any{[]any{field, "ilike", prefix}})
			if err != nil {
				return nil, err
			}
			add(recs)
			if len(out) > 0 {
				break
			}
		}
	}

	if len(out) == 0 {
		if pattern := resolve.WildcardPattern(query); pattern != "" {
			recs, err := f.search(ctx, model, field, []any{[]any{field, "=ilike", pattern}})
			if err != nil {
				return nil, err
			}
			add(recs)
		}
	}

	zap.L().Debug("odoo: candidates",
		zap.String("model", model),
		zap.String("field", field),
		zap.String("query", query),
		zap.Int("count", len(out)),
	)
	return out, nil
}

// queryPrefixes returns the proper prefixes of query, longest first, with
// trailing spaces and punctuation trimmed and duplicates dropped. Prefixes
// shorter than minPrefix runes are not returned.
func queryPrefixes(query string) []string {
	rs := []rune(query)
	var out []string
	seen := map[string]bool{query: true}
	for n := len(rs) - 1; n >= minPrefix; n-- {
		p := strings.TrimRightFunc(string(rs[:n]), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
		if utf8.RuneCountInString(p) < minPrefix || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Find resolves query against model, trying each field in order.
func (f *Finder) Find(ctx context.Context, model, query string, fields ...string) (resolve.Match, bool, error) {
	for _, field := range fields {
		pool, err := f.Candidates(ctx, model, field, query)
		if err != nil {
			return resolve.Match{}, false, err
		}
		if m, ok := resolve.Resolve(query, pool); ok {
			if m.Tier != resolve.TierExact {
				zap.L().Warn("odoo: inexact reference match",
					zap.String("model", model),
					zap.String("query", query),
					zap.String("matched", m.Name),
					zap.Int64("id", m.ID),
					zap.Stringer("tier", m.Tier),
				)
			}
			return m, true, nil
		}
	}
	return resolve.Match{}, false, nil
}

func (f *Finder) search(ctx context.Context, model, field string, domain []any) ([]Record, error) {
	return resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]Record, error) {
		return f.client.SearchRead(ctx, model, domain, []string{field}, f.limit)
	})
}
