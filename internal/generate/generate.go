// Package generate produces synthetic lines by traversing the lattice from
// a seed. Output is a pure function of the request and the lattice.
package generate

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/rcliao/codebook/internal/lattice"
	"github.com/rcliao/codebook/internal/logging"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/parser"
)

// ErrInvalidRequest wraps every request-shape violation.
var ErrInvalidRequest = errors.New("invalid generation request")

// Selection is the policy for choosing a token within a window.
type Selection string

const (
	// Uniform picks every vocabulary token with equal probability.
	Uniform Selection = "uniform"
	// HeadWeighted gives the i-th of n tokens weight n-i, favouring the
	// head of the vocabulary list.
	HeadWeighted Selection = "head"
)

// ValidSelections are the accepted selection policies.
var ValidSelections = map[Selection]bool{Uniform: true, HeadWeighted: true}

// MaxWordsPerLine bounds WordsPerLineMax.
const MaxWordsPerLine = 10000

// pcgStream is the fixed second PCG word; the seed supplies the first.
const pcgStream = 0x9e3779b97f4a7c15

// Request describes one generation run.
type Request struct {
	Seed            int64 `json:"seed"`
	LineCount       int   `json:"line_count"`
	WordsPerLineMin int   `json:"words_per_line_min"`
	WordsPerLineMax int   `json:"words_per_line_max"`
	// StartWindow nil means the lattice hub.
	StartWindow *int               `json:"start_window,omitempty"`
	Format      model.OutputFormat `json:"format,omitempty"`
	Selection   Selection          `json:"selection,omitempty"`
	// LinesPerPage numbers lines by page in the locus header; 0 puts every
	// line on one page.
	LinesPerPage int `json:"lines_per_page,omitempty"`
	// ResetAtPage returns the traversal to the hub at every page boundary.
	// Without it the window state carries across all lines.
	ResetAtPage bool `json:"reset_at_page,omitempty"`
}

// DefaultRequest returns a small, valid request.
func DefaultRequest() Request {
	return Request{
		Seed:            1,
		LineCount:       10,
		WordsPerLineMin: 4,
		WordsPerLineMax: 10,
		Format:          model.FormatContent,
		Selection:       Uniform,
	}
}

// Generator traverses one lattice.
type Generator struct {
	m   *lattice.Model
	log *slog.Logger
}

// New returns a generator over m. A nil logger discards.
func New(m *lattice.Model, log *slog.Logger) *Generator {
	return &Generator{m: m, log: logging.OrDiscard(log).With("comp", "generate")}
}

// Check reports the first request-shape violation, if any.
func (g *Generator) Check(req Request) error {
	switch {
	case req.LineCount < 0:
		return fmt.Errorf("%w: line count %d is negative", ErrInvalidRequest, req.LineCount)
	case req.WordsPerLineMin < 0:
		return fmt.Errorf("%w: words per line minimum %d is negative", ErrInvalidRequest, req.WordsPerLineMin)
	case req.WordsPerLineMin > req.WordsPerLineMax:
		return fmt.Errorf("%w: words per line minimum %d exceeds maximum %d", ErrInvalidRequest, req.WordsPerLineMin, req.WordsPerLineMax)
	case req.WordsPerLineMax > MaxWordsPerLine:
		return fmt.Errorf("%w: words per line maximum %d exceeds %d", ErrInvalidRequest, req.WordsPerLineMax, MaxWordsPerLine)
	case req.StartWindow != nil && (*req.StartWindow < 0 || *req.StartWindow >= g.m.WindowCount()):
		return fmt.Errorf("%w: start window %d outside [0, %d)", ErrInvalidRequest, *req.StartWindow, g.m.WindowCount())
	case req.LinesPerPage < 0:
		return fmt.Errorf("%w: lines per page %d is negative", ErrInvalidRequest, req.LinesPerPage)
	case req.ResetAtPage && req.LinesPerPage == 0:
		return fmt.Errorf("%w: page reset needs lines per page", ErrInvalidRequest)
	case req.Format != "" && !model.ValidFormats[req.Format]:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidRequest, req.Format)
	case req.Selection != "" && !ValidSelections[req.Selection]:
		return fmt.Errorf("%w: unknown selection %q", ErrInvalidRequest, req.Selection)
	}
	return nil
}

// Lines validates req and returns an iterator over the generated lines.
// Each iteration restarts the PRNG stream from the seed, so ranging twice
// yields the same lines.
func (g *Generator) Lines(req Request) (iter.Seq[model.LineOutput], error) {
	if err := g.Check(req); err != nil {
		return nil, err
	}
	start := g.m.Hub()
	if req.StartWindow != nil {
		start = *req.StartWindow
	}
	return func(yield func(model.LineOutput) bool) {
		rng := rand.New(rand.NewPCG(uint64(req.Seed), pcgStream))
		current := start
		for i := 0; i < req.LineCount; i++ {
			page, onPage := 1, i+1
			if req.LinesPerPage > 0 {
				page, onPage = i/req.LinesPerPage+1, i%req.LinesPerPage+1
				if req.ResetAtPage && i > 0 && onPage == 1 {
					current = g.m.Hub()
				}
			}

			out := model.LineOutput{
				Index:      i,
				Page:       page,
				LineOnPage: onPage,
				Locus:      locus(page, onPage),
				Tokens:     []string{},
				Windows:    []int{},
			}
			n := req.WordsPerLineMin + rng.IntN(req.WordsPerLineMax-req.WordsPerLineMin+1)
			for range n {
				w := g.m.Inhabited(current)
				tok := g.m.TokenAt(w, pick(rng, g.m.VocabularySize(w), req.Selection))
				out.Tokens = append(out.Tokens, tok)
				out.Windows = append(out.Windows, w)
				current, _ = g.m.Next(w, tok)
			}
			out.EndWindow = current
			if !yield(out) {
				return
			}
		}
	}, nil
}

// Generate collects every line of req.
func (g *Generator) Generate(req Request) ([]model.LineOutput, error) {
	seq, err := g.Lines(req)
	if err != nil {
		return nil, err
	}
	g.log.Debug("start", "seed", req.Seed, "lines", req.LineCount)
	var lines []model.LineOutput
	for l := range seq {
		lines = append(lines, l)
	}
	g.log.Debug("finish", "lines", len(lines))
	return lines, nil
}

// Render joins lines in the given format, one per row.
func Render(lines []model.LineOutput, f model.OutputFormat) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Text(f))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pick(rng *rand.Rand, n int, sel Selection) int {
	if sel != HeadWeighted || n == 1 {
		return rng.IntN(n)
	}
	r := rng.IntN(n * (n + 1) / 2)
	for i := 0; i < n; i++ {
		weight := n - i
		if r < weight {
			return i
		}
		r -= weight
	}
	return n - 1
}

// locus names a synthetic line in the canonical grammar. The first line of
// a page opens a paragraph (@P0); later lines continue it (+P0).
func locus(page, line int) string {
	locator := "+P0"
	if line == 1 {
		locator = "@P0"
	}
	return parser.Locus{Folio: parser.FolioFor(page), Line: line, Locator: locator}.String()
}
