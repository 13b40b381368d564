package lattice

import (
	"slices"

	"github.com/rcliao/codebook/internal/model"
)

// AdjacencyRule selects which adjacency kinds count and which one wins when
// both match.
type AdjacencyRule struct {
	Numeric        bool `json:"numeric"`
	Vertical       bool `json:"vertical"`
	PreferVertical bool `json:"prefer_vertical,omitempty"`
}

// DefaultAdjacency checks both kinds and prefers the numeric neighbour.
var DefaultAdjacency = AdjacencyRule{Numeric: true, Vertical: true}

// RuleOrDefault returns *r, or DefaultAdjacency when r is nil. A non-nil
// rule with both kinds disabled is kept as is.
func RuleOrDefault(r *AdjacencyRule) AdjacencyRule {
	if r == nil {
		return DefaultAdjacency
	}
	return *r
}

// NoWindow marks an absent vertical window.
const NoWindow = -1

// Adjacency classifies candidate relative to expected. Numeric adjacency is
// expected±1 (mod W); vertical adjacency means candidate is the window that
// produced the previous line's final state.
func (m *Model) Adjacency(rule AdjacencyRule, expected, candidate, vertical int) model.Adjacency {
	if candidate == expected || candidate < 0 || candidate >= m.count {
		return model.NotAdjacent
	}
	numeric := rule.Numeric && (candidate == m.mod(expected+1) || candidate == m.mod(expected-1))
	vert := rule.Vertical && vertical != NoWindow && candidate == vertical
	switch {
	case numeric && vert && rule.PreferVertical:
		return model.Vertical
	case numeric:
		return model.Numeric
	case vert:
		return model.Vertical
	}
	return model.NotAdjacent
}

// IsAdjacent applies DefaultAdjacency.
func (m *Model) IsAdjacent(w1, w2, vertical int) bool {
	return m.Adjacency(DefaultAdjacency, w1, w2, vertical) != model.NotAdjacent
}

// MatchAdjacent picks the adjacent window among candidates. Candidates are
// scanned in ascending order; the preferred kind wins over the other.
func (m *Model) MatchAdjacent(rule AdjacencyRule, expected, vertical int, candidates []int) (int, model.Adjacency, bool) {
	preferred := model.Numeric
	if rule.PreferVertical {
		preferred = model.Vertical
	}
	fallback, fallbackKind := NoWindow, model.NotAdjacent
	for _, c := range slices.Sorted(slices.Values(candidates)) {
		kind := m.Adjacency(rule, expected, c, vertical)
		if kind == preferred {
			return c, kind, true
		}
		if kind != model.NotAdjacent && fallback == NoWindow {
			fallback, fallbackKind = c, kind
		}
	}
	return fallback, fallbackKind, fallback != NoWindow
}
