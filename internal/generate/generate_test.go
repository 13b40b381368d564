package generate

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/rcliao/codebook/internal/lattice/latticetest"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/validate"
)

func intp(v int) *int { return &v }

func TestGenerate_Deterministic(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	req := DefaultRequest()
	req.Seed = 42
	req.LineCount = 25

	a, err := g.Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := g.Generate(req)
	if Render(a, model.FormatLocus) != Render(b, model.FormatLocus) {
		t.Fatal("same request produced different output")
	}

	req.Seed = 43
	c, _ := g.Generate(req)
	if Render(a, model.FormatContent) == Render(c, model.FormatContent) {
		t.Error("different seeds produced identical output")
	}
}

func TestLines_RangingTwiceRepeats(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	seq, err := g.Lines(DefaultRequest())
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	var first, second []model.LineOutput
	for l := range seq {
		first = append(first, l)
	}
	for l := range seq {
		second = append(second, l)
	}
	if Render(first, model.FormatContent) != Render(second, model.FormatContent) {
		t.Error("iterator is not restartable")
	}
}

func TestGenerate_WordCounts(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	req := Request{Seed: 7, LineCount: 200, WordsPerLineMin: 2, WordsPerLineMax: 5}
	lines, err := g.Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	seen := map[int]bool{}
	for _, l := range lines {
		n := len(l.Tokens)
		if n < 2 || n > 5 {
			t.Fatalf("line %d has %d tokens", l.Index, n)
		}
		seen[n] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected every count in [2,5] over 200 lines, saw %v", seen)
	}
}

func TestGenerate_FollowsTransitions(t *testing.T) {
	m := latticetest.Small(t)
	g := New(m, nil)
	req := Request{Seed: 3, LineCount: 30, WordsPerLineMin: 1, WordsPerLineMax: 6, StartWindow: intp(2)}
	lines, err := g.Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	current := 2
	for _, l := range lines {
		for k, tok := range l.Tokens {
			if l.Windows[k] != current {
				t.Fatalf("line %d word %d: expected window %d, got %d", l.Index, k, current, l.Windows[k])
			}
			if !m.Contains(current, tok) {
				t.Fatalf("token %q not in window %d", tok, current)
			}
			current, _ = m.Next(current, tok)
		}
		if l.EndWindow != current {
			t.Fatalf("line %d: end window %d, expected %d", l.Index, l.EndWindow, current)
		}
	}
}

func TestGenerate_PageReset(t *testing.T) {
	m := latticetest.Small(t)
	g := New(m, nil)
	req := Request{Seed: 11, LineCount: 12, WordsPerLineMin: 1, WordsPerLineMax: 4,
		StartWindow: intp(3), LinesPerPage: 4, ResetAtPage: true}
	lines, err := g.Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, l := range lines {
		if l.LineOnPage == 1 && l.Index > 0 && l.Windows[0] != m.Hub() {
			t.Errorf("line %d opens page %d in window %d, expected hub", l.Index, l.Page, l.Windows[0])
		}
	}
	if lines[0].Windows[0] != 3 {
		t.Errorf("first line must start in the requested window, got %d", lines[0].Windows[0])
	}
	if lines[4].Locus != "f1v.1,@P0" || lines[5].Locus != "f1v.2,+P0" || lines[8].Page != 3 {
		t.Errorf("unexpected pagination: %q %q page %d", lines[4].Locus, lines[5].Locus, lines[8].Page)
	}
}

func TestGenerate_CarriesStateWithoutReset(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	req := Request{Seed: 5, LineCount: 10, WordsPerLineMin: 1, WordsPerLineMax: 3, LinesPerPage: 2}
	lines, _ := g.Generate(req)
	for i := 1; i < len(lines); i++ {
		if lines[i].Windows[0] != lines[i-1].EndWindow {
			t.Fatalf("line %d did not carry window %d forward", i, lines[i-1].EndWindow)
		}
	}
}

func TestGenerate_SkipsEmptyWindows(t *testing.T) {
	m := latticetest.Sparse(t, 50, map[int][]string{7: {"daiin", "ol"}}, 30)
	lines, err := New(m, nil).Generate(Request{Seed: 1, LineCount: 3, WordsPerLineMin: 2, WordsPerLineMax: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, l := range lines {
		for _, w := range l.Windows {
			if w != 7 {
				t.Fatalf("expected every token from window 7, got %d", w)
			}
		}
	}
}

func TestGenerate_HeadWeighted(t *testing.T) {
	m := latticetest.Sparse(t, 50, map[int][]string{0: {"daiin", "ol", "chedy"}}, 0)
	g := New(m, nil)
	counts := func(sel Selection) map[string]int {
		lines, err := g.Generate(Request{Seed: 9, LineCount: 200, WordsPerLineMin: 30, WordsPerLineMax: 30, Selection: sel})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		c := map[string]int{}
		for _, l := range lines {
			for _, tok := range l.Tokens {
				c[tok]++
			}
		}
		return c
	}
	head := counts(HeadWeighted)
	if !(head["daiin"] > head["ol"] && head["ol"] > head["chedy"]) {
		t.Errorf("expected head-weighted ordering, got %v", head)
	}
	uniform := counts(Uniform)
	if uniform["chedy"] < 1500 {
		t.Errorf("expected roughly a third chedy under uniform, got %v", uniform)
	}
}

func TestGenerate_InvalidRequests(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	tests := []struct {
		name string
		req  Request
	}{
		{"min above max", Request{WordsPerLineMin: 5, WordsPerLineMax: 2}},
		{"negative min", Request{WordsPerLineMin: -1, WordsPerLineMax: 2}},
		{"max above limit", Request{WordsPerLineMax: MaxWordsPerLine + 1}},
		{"max int span", Request{WordsPerLineMax: math.MaxInt}},
		{"negative lines", Request{LineCount: -1}},
		{"start window out of range", Request{StartWindow: intp(6)}},
		{"negative start window", Request{StartWindow: intp(-1)}},
		{"reset without pages", Request{ResetAtPage: true}},
		{"negative page size", Request{LinesPerPage: -2}},
		{"unknown format", Request{Format: "html"}},
		{"unknown selection", Request{Selection: "zipf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestGenerate_RoundTripThroughValidator(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	for seed := int64(0); seed < 40; seed++ {
		req := Request{
			Seed:            seed,
			LineCount:       int(seed%7) + 1,
			WordsPerLineMin: int(seed % 3),
			WordsPerLineMax: int(seed%3) + int(seed%5),
			LinesPerPage:    int(seed % 4),
		}
		lines, err := g.Generate(req)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, f := range []model.OutputFormat{model.FormatContent, model.FormatLocus} {
			text := Render(lines, f)
			r := validate.Validate(text, model.ModeSyntax, validate.DefaultOptions())
			if !r.Valid {
				t.Fatalf("seed %d format %s: generated text rejected: %+v\n%s", seed, f, r.Errors, text)
			}
		}
	}
}

func TestGenerate_LocusLinesParseAsFullLines(t *testing.T) {
	g := New(latticetest.Small(t), nil)
	lines, _ := g.Generate(Request{Seed: 2, LineCount: 3, WordsPerLineMin: 2, WordsPerLineMax: 2})
	r := validate.Validate(Render(lines, model.FormatLocus), model.ModeSanitized, validate.DefaultOptions())
	for i, d := range r.Diagnostics {
		if d.Type != model.FullLine {
			t.Errorf("line %d: expected full_line, got %s", i+1, d.Type)
		}
		if want := fmt.Sprintf("f1r.%d", i+1); d.Location[:len(want)] != want {
			t.Errorf("line %d: unexpected location %q", i+1, d.Location)
		}
	}
}
