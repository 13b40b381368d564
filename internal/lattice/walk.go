package lattice

import (
	"slices"

	"github.com/rcliao/codebook/internal/model"
)

// Outcome is how one token fared against the expected window.
type Outcome string

const (
	Admissible Outcome = "admissible"
	Slipped    Outcome = "slip"
	Desynced   Outcome = "desync"
	Unknown    Outcome = "unknown"
)

// Step records one replayed token.
type Step struct {
	Line      int
	Position  int
	Token     string
	Expected  int
	Window    int // window the token was taken from, NoWindow if unknown
	Outcome   Outcome
	Adjacency model.Adjacency
}

// Slip converts a slipped step into a slip record.
func (s Step) Slip() (model.Slip, bool) {
	if s.Outcome != Slipped {
		return model.Slip{}, false
	}
	return model.Slip{
		Line:           s.Line,
		Position:       s.Position,
		Token:          s.Token,
		ExpectedWindow: s.Expected,
		MatchedWindow:  s.Window,
		Adjacency:      s.Adjacency,
	}, true
}

// Walker replays a token stream through the lattice using the same
// transition rule as generation. The validator and the slip detector both
// drive a Walker, so their notions of admissibility cannot drift apart.
type Walker struct {
	m        *Model
	rule     AdjacencyRule
	current  int
	vertical int
	lastUsed int
}

// NewWalker starts a replay in window start.
func (m *Model) NewWalker(start int, rule AdjacencyRule) *Walker {
	return &Walker{m: m, rule: rule, current: start, vertical: NoWindow, lastUsed: NoWindow}
}

// Current returns the window the next token is expected in.
func (w *Walker) Current() int { return w.current }

// Vertical returns the window that produced the previous line's final state.
func (w *Walker) Vertical() int { return w.vertical }

// Step consumes one sanitized token.
//
// An admitted token advances normally. A token found only in an adjacent
// window is a slip and the replay resynchronises from that window. A token
// found only in non-adjacent windows is a desync and the replay resumes from
// the lowest candidate. Unknown tokens leave the state untouched.
func (w *Walker) Step(line, pos int, tok string) Step {
	st := Step{Line: line, Position: pos, Token: tok, Expected: w.current, Window: NoWindow}
	candidates := w.m.index[tok]
	switch {
	case len(candidates) == 0:
		st.Outcome = Unknown
		return st
	case slices.Contains(candidates, w.current):
		st.Outcome = Admissible
		st.Window = w.current
	default:
		if c, kind, ok := w.m.MatchAdjacent(w.rule, w.current, w.vertical, candidates); ok {
			st.Outcome, st.Window, st.Adjacency = Slipped, c, kind
		} else {
			st.Outcome, st.Window = Desynced, candidates[0]
		}
	}
	w.current, _ = w.m.Next(st.Window, tok)
	w.lastUsed = st.Window
	return st
}

// EndLine closes the current line. The window of its last selection becomes
// the vertical neighbour for the next line.
func (w *Walker) EndLine() {
	w.vertical = w.lastUsed
	w.lastUsed = NoWindow
}

// Reset moves the replay to window id, as at a page boundary.
func (w *Walker) Reset(id int) {
	w.current = id
}
