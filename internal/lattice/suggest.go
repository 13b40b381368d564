package lattice

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// MaxSuggestDistance bounds the edit distance of suggestions.
const MaxSuggestDistance = 2

// Suggest returns up to limit vocabulary tokens closest to tok by edit
// distance, nearest first, ties broken alphabetically.
func (m *Model) Suggest(tok string, limit int) []string {
	if limit <= 0 || tok == "" {
		return nil
	}
	type hit struct {
		tok  string
		dist int
	}
	var hits []hit
	for _, cand := range m.tokens {
		if d := levenshtein.ComputeDistance(tok, cand); d > 0 && d <= MaxSuggestDistance {
			hits = append(hits, hit{cand, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	var out []string
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].tok)
	}
	return out
}
