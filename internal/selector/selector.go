// Package selector derives the filtered and sorted token lists shown in each column.
// Every function here is pure: inputs are never mutated.
package selector

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pulse/internal/domain"
)

type compareFunc func(a, b *domain.Token) int

func numeric(get func(*domain.Token) float64) compareFunc {
	return func(a, b *domain.Token) int {
		return cmp.Compare(get(a), get(b))
	}
}

// comparators is the closed set of sort keys. Name is handled separately
// because the collator is not safe for concurrent use.
var comparators = map[domain.SortField]compareFunc{
	domain.SortByMarketCap: numeric(func(t *domain.Token) float64 { return t.MarketCap }),
	domain.SortByPrice:     numeric(func(t *domain.Token) float64 { return t.Price }),
	domain.SortByVolume:    numeric(func(t *domain.Token) float64 { return t.Volume24h }),
	domain.SortByTxCount:   numeric(func(t *domain.Token) float64 { return float64(t.TxCount) }),
}

func comparatorFor(field domain.SortField) compareFunc {
	if field == domain.SortByName {
		c := collate.New(language.English, collate.IgnoreCase)
		return func(a, b *domain.Token) int {
			return c.CompareString(a.Name, b.Name)
		}
	}
	if f, ok := comparators[field]; ok {
		return f
	}
	return comparators[domain.SortByMarketCap]
}

// Filter keeps tokens whose name or symbol contains query, ignoring case.
// A blank query keeps everything.
func Filter(tokens []domain.Token, query string) []domain.Token {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(tokens)
	}
	out := make([]domain.Token, 0, len(tokens))
	for _, t := range tokens {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Symbol), q) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a stably sorted copy of tokens. Unknown fields fall back to market cap.
func Sort(tokens []domain.Token, cfg domain.SortConfig) []domain.Token {
	out := slices.Clone(tokens)
	compare := comparatorFor(cfg.Field)
	if cfg.Order == domain.SortDesc {
		slices.SortStableFunc(out, func(a, b domain.Token) int { return compare(&b, &a) })
	} else {
		slices.SortStableFunc(out, func(a, b domain.Token) int { return compare(&a, &b) })
	}
	return out
}

// Process filters then sorts.
func Process(tokens []domain.Token, query string, cfg domain.SortConfig) []domain.Token {
	return Sort(Filter(tokens, query), cfg)
}

// Watched returns the tokens whose ids are in ids, in token order.
func Watched(tokens []domain.Token, ids []string) []domain.Token {
	if len(ids) == 0 {
		return []domain.Token{}
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]domain.Token, 0, len(ids))
	for _, t := range tokens {
		if _, ok := set[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
