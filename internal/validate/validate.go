// Package validate checks transliterated text against the line grammar,
// the canonical transliteration convention and, optionally, the lattice.
package validate

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/rcliao/codebook/internal/lattice"
	"github.com/rcliao/codebook/internal/logging"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/parser"
	"github.com/rcliao/codebook/internal/sanitize"
)

const (
	// DefaultCoverageThreshold is the coverage rate below which a mismatch
	// warning is emitted.
	DefaultCoverageThreshold = 0.2
	// MaxSuggestions bounds the suggestions attached to an unknown token.
	MaxSuggestions = 3
)

// Options configures a validation run.
type Options struct {
	// Relaxed reports canonical-convention problems as warnings. The zero
	// value is strict and they are errors.
	Relaxed bool
	// CoverageThreshold nil means DefaultCoverageThreshold. Zero disables
	// the coverage warning.
	CoverageThreshold *float64
	// Lattice is required in lattice mode.
	Lattice *lattice.Model
	// StartWindow for the lattice replay; nil means the lattice hub.
	StartWindow *int
	// Adjacency nil means lattice.DefaultAdjacency.
	Adjacency *lattice.AdjacencyRule
	Sanitizer *sanitize.Sanitizer
	Logger    *slog.Logger
}

// DefaultOptions returns strict options with the default threshold and
// adjacency. It equals the zero Options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) threshold() float64 {
	if o.CoverageThreshold == nil {
		return DefaultCoverageThreshold
	}
	return *o.CoverageThreshold
}

// line is a surviving line carried into the lattice phase.
type line struct {
	diag   int
	number int
	tokens []string
}

// Validate runs the checks of mode over text. It always returns a report;
// failures are recorded in it rather than returned.
func Validate(text string, mode model.Mode, opts Options) *model.Report {
	if opts.Sanitizer == nil {
		opts.Sanitizer = sanitize.New(nil)
	}
	log := logging.OrDiscard(opts.Logger).With("comp", "validate", "mode", string(mode))

	r := &model.Report{
		Mode:        mode,
		Strict:      !opts.Relaxed,
		Diagnostics: []model.Diagnostic{},
		Errors:      []model.Diagnostic{},
		Warnings:    []string{},
	}
	if !model.ValidModes[mode] {
		fail(r, model.Diagnostic{Status: model.StatusError, Message: fmt.Sprintf("unknown validation mode %q", mode)})
		return r
	}
	if mode == model.ModeLattice && opts.Lattice == nil {
		fail(r, model.Diagnostic{Status: model.StatusError, Message: "lattice mode requires a loaded lattice"})
		return r
	}
	log.Debug("start", "bytes", len(text))

	var (
		surviving []line
		normLines []string
		sanLines  []string
	)
	for _, e := range parser.Parse(text) {
		d := model.Diagnostic{Line: e.LineNumber, Type: e.Type, Location: e.Location, Tokens: e.Tokens}
		if e.Type == model.Blank || e.Type == model.Comment {
			d.Status = model.StatusSkipped
			r.Diagnostics = append(r.Diagnostics, d)
			continue
		}
		if e.Error != "" {
			d.Status = model.StatusError
			d.Message = e.Error
			fail(r, d)
			continue
		}

		sanitized := opts.Sanitizer.All(e.Tokens)
		if problems := conventionProblems(e, sanitized); len(problems) > 0 {
			d.Message = strings.Join(problems, "; ")
			if !opts.Relaxed {
				d.Status = model.StatusError
				fail(r, d)
				continue
			}
			d.Status = model.StatusWarning
			r.Warnings = append(r.Warnings, fmt.Sprintf("line %d: %s", e.LineNumber, d.Message))
		} else {
			d.Status = model.StatusOK
		}

		r.TokenCount += len(e.Tokens)
		normLines = append(normLines, strings.Join(e.Tokens, string(parser.Separator)))
		if mode.Includes(model.ModeSanitized) {
			d.Sanitized = sanitized
			r.SanitizedCount += len(sanitized)
			sanLines = append(sanLines, strings.Join(sanitized, string(parser.Separator)))
		}
		surviving = append(surviving, line{diag: len(r.Diagnostics), number: e.LineNumber, tokens: sanitized})
		r.Diagnostics = append(r.Diagnostics, d)
	}

	r.NormalizedText = strings.Join(normLines, "\n")
	r.SanitizedText = strings.Join(sanLines, "\n")

	if mode == model.ModeLattice {
		evaluateLattice(r, surviving, opts)
	}

	r.Valid = len(r.Errors) == 0
	log.Debug("finish", "valid", r.Valid, "errors", len(r.Errors), "warnings", len(r.Warnings))
	return r
}

func fail(r *model.Report, d model.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	r.Errors = append(r.Errors, d)
}

// conventionProblems lists the ways a structurally valid line departs from
// the canonical lowercase transliteration pipeline.
func conventionProblems(e model.LineEntry, sanitized []string) []string {
	var problems []string
	if e.Type == model.FullLine {
		if _, err := parser.ParseLocus(e.Location); err != nil {
			problems = append(problems, fmt.Sprintf("non-canonical locus %q", e.Location))
		}
	}
	for _, tok := range sanitized {
		if strings.IndexFunc(tok, unicode.IsUpper) >= 0 {
			problems = append(problems, fmt.Sprintf("token %q contains uppercase characters (non-canonical transliteration)", tok))
			break
		}
	}
	return problems
}

// evaluateLattice computes coverage and replays the token stream through
// the lattice. Low coverage is a warning, never an error.
func evaluateLattice(r *model.Report, lines []line, opts Options) {
	m := opts.Lattice
	r.LatticeFingerprint = m.Fingerprint()

	start := m.Hub()
	if opts.StartWindow != nil {
		if s := *opts.StartWindow; s >= 0 && s < m.WindowCount() {
			start = s
		} else {
			r.Warnings = append(r.Warnings, fmt.Sprintf("start window %d outside the lattice; replaying from hub %d", s, start))
		}
	}
	walker := m.NewWalker(start, lattice.RuleOrDefault(opts.Adjacency))
	adm := &model.Admissibility{}

	total, found := 0, 0
	for _, l := range lines {
		d := &r.Diagnostics[l.diag]
		for pos, tok := range l.tokens {
			total++
			if m.Known(tok) {
				found++
			} else {
				d.Unknown = append(d.Unknown, model.UnknownToken{
					Position:    pos,
					Token:       tok,
					Suggestions: m.Suggest(tok, MaxSuggestions),
				})
			}
			switch walker.Step(l.number, pos, tok).Outcome {
			case lattice.Admissible:
				adm.Admissible++
			case lattice.Slipped:
				adm.Slipped++
			case lattice.Desynced:
				adm.Desynced++
			case lattice.Unknown:
				adm.Unknown++
			}
		}
		walker.EndLine()
	}

	rate := 0.0
	if total > 0 {
		rate = float64(found) / float64(total)
	}
	r.CoverageRate = &rate
	r.Admissibility = adm
	if threshold := opts.threshold(); total > 0 && rate < threshold {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"lattice coverage %.3f is below %.3f: the text may use a different transliteration than the lattice",
			rate, threshold))
	}
}
