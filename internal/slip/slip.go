// Package slip finds tokens that a replayed traversal expected in one window
// but found only in an adjacent one.
package slip

import (
	"log/slog"

	"github.com/rcliao/codebook/internal/lattice"
	"github.com/rcliao/codebook/internal/logging"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/parser"
	"github.com/rcliao/codebook/internal/sanitize"
)

// Options configures a detection pass.
type Options struct {
	// StartWindow nil means the lattice hub.
	StartWindow *int
	// Adjacency nil means lattice.DefaultAdjacency.
	Adjacency *lattice.AdjacencyRule
	// LinesPerPage with ResetAtPage returns the replay to the hub every
	// LinesPerPage lines, mirroring generation.
	LinesPerPage int
	ResetAtPage  bool
	Logger       *slog.Logger
}

// Result is the outcome of one pass. Slips are in corpus order.
type Result struct {
	Slips      []model.Slip            `json:"slips"`
	Tokens     int                     `json:"tokens"`
	Admissible int                     `json:"admissible"`
	Desynced   int                     `json:"desynced"`
	Unknown    int                     `json:"unknown"`
	ByKind     map[model.Adjacency]int `json:"by_kind"`
}

// Rate is the share of known tokens that slipped.
func (r *Result) Rate() float64 {
	known := r.Tokens - r.Unknown
	if known == 0 {
		return 0
	}
	return float64(len(r.Slips)) / float64(known)
}

// Detect replays lines, each a list of sanitized tokens, through m. Line
// numbers in the result are 1-based indexes into lines. The corpus is not
// modified.
func Detect(m *lattice.Model, lines [][]string, opts Options) *Result {
	log := logging.OrDiscard(opts.Logger).With("comp", "slip")

	start := m.Hub()
	if opts.StartWindow != nil && *opts.StartWindow >= 0 && *opts.StartWindow < m.WindowCount() {
		start = *opts.StartWindow
	}
	w := m.NewWalker(start, lattice.RuleOrDefault(opts.Adjacency))
	res := &Result{Slips: []model.Slip{}, ByKind: map[model.Adjacency]int{}}

	for i, tokens := range lines {
		if opts.ResetAtPage && opts.LinesPerPage > 0 && i > 0 && i%opts.LinesPerPage == 0 {
			w.Reset(m.Hub())
		}
		for pos, tok := range tokens {
			res.Tokens++
			st := w.Step(i+1, pos, tok)
			switch st.Outcome {
			case lattice.Admissible:
				res.Admissible++
			case lattice.Desynced:
				res.Desynced++
			case lattice.Unknown:
				res.Unknown++
			case lattice.Slipped:
				s, _ := st.Slip()
				res.Slips = append(res.Slips, s)
				res.ByKind[s.Adjacency]++
			}
		}
		w.EndLine()
	}
	log.Debug("detect", "lines", len(lines), "tokens", res.Tokens, "slips", len(res.Slips))
	return res
}

// CorpusFromText parses text and returns the sanitized tokens of every line
// that carries content. Malformed lines are dropped. A nil sanitizer uses
// the default policy.
func CorpusFromText(text string, s *sanitize.Sanitizer) [][]string {
	if s == nil {
		s = sanitize.New(nil)
	}
	var corpus [][]string
	for e := range parser.Lines(text) {
		if e.HasContent() {
			corpus = append(corpus, s.All(e.Tokens))
		}
	}
	return corpus
}
