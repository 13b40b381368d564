package slip

import (
	"slices"
	"testing"

	"github.com/rcliao/codebook/internal/generate"
	"github.com/rcliao/codebook/internal/lattice"
	"github.com/rcliao/codebook/internal/lattice/latticetest"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/validate"
)

func intp(v int) *int { return &v }

// overlapLattice has ten windows. "sho" lives only in window 5 and leads to
// window 3; "qokedy" lives in windows 4 and 5.
func overlapLattice(t *testing.T) *lattice.Model {
	t.Helper()
	ds := lattice.Dataset{WindowCount: 10, Transitions: map[string]int{"sho": 3, "qokedy": 0, "daiin": 1}}
	for id := 0; id < 10; id++ {
		ds.Windows = append(ds.Windows, lattice.WindowSpec{ID: id})
	}
	ds.Windows[0].Vocabulary = []string{"daiin"}
	ds.Windows[4].Vocabulary = []string{"qokedy"}
	ds.Windows[5].Vocabulary = []string{"sho", "qokedy"}
	return latticetest.MustBuild(t, ds)
}

func TestDetect_NumericPreferredByDefault(t *testing.T) {
	m := overlapLattice(t)
	res := Detect(m, [][]string{{"sho"}, {"qokedy"}}, Options{StartWindow: intp(5)})

	if len(res.Slips) != 1 {
		t.Fatalf("expected 1 slip, got %+v", res.Slips)
	}
	want := model.Slip{Line: 2, Position: 0, Token: "qokedy", ExpectedWindow: 3, MatchedWindow: 4, Adjacency: model.Numeric}
	if res.Slips[0] != want {
		t.Errorf("got %+v, want %+v", res.Slips[0], want)
	}
	if res.Admissible != 1 || res.ByKind[model.Numeric] != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestDetect_PreferVertical(t *testing.T) {
	m := overlapLattice(t)
	rule := lattice.AdjacencyRule{Numeric: true, Vertical: true, PreferVertical: true}
	res := Detect(m, [][]string{{"sho"}, {"qokedy"}}, Options{StartWindow: intp(5), Adjacency: &rule})

	if len(res.Slips) != 1 {
		t.Fatalf("expected 1 slip, got %+v", res.Slips)
	}
	if s := res.Slips[0]; s.MatchedWindow != 5 || s.Adjacency != model.Vertical {
		t.Errorf("expected vertical match in window 5, got %+v", s)
	}
}

func TestDetect_VerticalOnlyOnNextLine(t *testing.T) {
	m := overlapLattice(t)
	rule := lattice.AdjacencyRule{Vertical: true}
	// Same tokens on one line: there is no previous line, so no vertical
	// neighbour exists and the token desyncs.
	res := Detect(m, [][]string{{"sho", "qokedy"}}, Options{StartWindow: intp(5), Adjacency: &rule})
	if len(res.Slips) != 0 || res.Desynced != 1 {
		t.Errorf("expected a desync, got %+v", res)
	}
}

func TestDetect_NoAdjacencyKinds(t *testing.T) {
	m := overlapLattice(t)
	rule := lattice.AdjacencyRule{}
	res := Detect(m, [][]string{{"sho"}, {"qokedy"}}, Options{StartWindow: intp(5), Adjacency: &rule})
	if len(res.Slips) != 0 || res.Desynced != 1 || res.Admissible != 1 {
		t.Errorf("expected no slips and one desync with every kind disabled, got %+v", res)
	}
}

func TestDetect_CountsUnknownAndDesync(t *testing.T) {
	m := latticetest.Small(t)
	// From hub 0: daiin admits and moves to window 1. "cthy" is only in
	// window 4, which is not adjacent to 1. "zzz" is unknown.
	res := Detect(m, [][]string{{"daiin", "cthy", "zzz"}}, Options{})
	if res.Tokens != 3 || res.Admissible != 1 || res.Desynced != 1 || res.Unknown != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if res.Rate() != 0 {
		t.Errorf("expected zero slip rate, got %f", res.Rate())
	}
}

func TestDetect_GeneratedTextHasNoSlips(t *testing.T) {
	m := latticetest.Small(t)
	lines, err := generate.New(m, nil).Generate(generate.Request{Seed: 8, LineCount: 40, WordsPerLineMin: 1, WordsPerLineMax: 8})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	corpus := make([][]string, len(lines))
	for i, l := range lines {
		corpus[i] = l.Tokens
	}
	res := Detect(m, corpus, Options{})
	if len(res.Slips) != 0 || res.Admissible != res.Tokens {
		t.Errorf("generated corpus should replay cleanly, got %+v", res)
	}
}

func TestDetect_PageResetMatchesGeneration(t *testing.T) {
	m := latticetest.Small(t)
	req := generate.Request{Seed: 4, LineCount: 12, WordsPerLineMin: 1, WordsPerLineMax: 4, LinesPerPage: 3, ResetAtPage: true}
	lines, _ := generate.New(m, nil).Generate(req)
	var corpus [][]string
	for _, l := range lines {
		corpus = append(corpus, l.Tokens)
	}
	res := Detect(m, corpus, Options{LinesPerPage: 3, ResetAtPage: true})
	if res.Admissible != res.Tokens {
		t.Errorf("expected every token admissible with matching resets, got %+v", res)
	}
}

func TestDetect_AgreesWithValidator(t *testing.T) {
	m := latticetest.Small(t)
	text := "daiin.qokeedy.chol\nokaiin.sho.ar\nshedy.dar.qokain.ol\n"

	res := Detect(m, CorpusFromText(text, nil), Options{})
	opts := validate.DefaultOptions()
	opts.Lattice = m
	r := validate.Validate(text, model.ModeLattice, opts)

	if r.Admissibility == nil {
		t.Fatal("lattice report missing admissibility")
	}
	if r.Admissibility.Slipped != len(res.Slips) ||
		r.Admissibility.Admissible != res.Admissible ||
		r.Admissibility.Desynced != res.Desynced ||
		r.Admissibility.Unknown != res.Unknown {
		t.Errorf("validator %+v disagrees with detector %+v", *r.Admissibility, res)
	}
}

func TestDetect_DoesNotModifyCorpus(t *testing.T) {
	m := latticetest.Small(t)
	corpus := [][]string{{"daiin", "otedy"}, {"zzz", "chol"}}
	before := [][]string{slices.Clone(corpus[0]), slices.Clone(corpus[1])}
	Detect(m, corpus, Options{})
	for i := range corpus {
		if !slices.Equal(corpus[i], before[i]) {
			t.Errorf("line %d modified: %v", i, corpus[i])
		}
	}
}

func TestCorpusFromText(t *testing.T) {
	text := "# header\n<f1r.1,@P0> da[i:ii]n.ol\n\n<f1r.2 broken\nchedy.{x}dar\n"
	got := CorpusFromText(text, nil)
	want := [][]string{{"dan", "ol"}, {"chedy", "xdar"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("line %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
