// Package latticetest provides small lattices for tests.
package latticetest

import (
	"testing"

	"github.com/rcliao/codebook/internal/lattice"
)

// SmallDataset returns a six-window dataset with two or three tokens per
// window and a mix of positive, negative and zero corrections.
func SmallDataset() lattice.Dataset {
	return lattice.Dataset{
		WindowCount: 6,
		Windows: []lattice.WindowSpec{
			{ID: 0, CorrectionOffset: 0, Vocabulary: []string{"daiin", "ol", "chedy"}},
			{ID: 1, CorrectionOffset: 1, Vocabulary: []string{"qokeedy", "shedy"}},
			{ID: 2, CorrectionOffset: -1, Vocabulary: []string{"otedy", "qokain"}},
			{ID: 3, CorrectionOffset: 2, Vocabulary: []string{"chol", "dar"}},
			{ID: 4, CorrectionOffset: 0, Vocabulary: []string{"okaiin", "cthy"}},
			{ID: 5, CorrectionOffset: 3, Vocabulary: []string{"sho", "ar"}},
		},
		Transitions: map[string]int{
			"daiin": 1, "ol": 2, "chedy": 3,
			"qokeedy": 2, "shedy": 4,
			"otedy": 5, "qokain": 0,
			"chol": 1, "dar": 4,
			"okaiin": 5, "cthy": 0,
			"sho": 1, "ar": 2,
		},
	}
}

// Small builds the model for SmallDataset.
func Small(t testing.TB) *lattice.Model {
	t.Helper()
	return MustBuild(t, SmallDataset())
}

// Sparse builds a lattice of count windows where only the listed windows
// have vocabulary. Every token transitions to the given target.
func Sparse(t testing.TB, count int, vocab map[int][]string, target int) *lattice.Model {
	t.Helper()
	ds := lattice.Dataset{WindowCount: count, Transitions: map[string]int{}}
	for id := 0; id < count; id++ {
		ds.Windows = append(ds.Windows, lattice.WindowSpec{ID: id, Vocabulary: vocab[id]})
		for _, tok := range vocab[id] {
			ds.Transitions[tok] = target
		}
	}
	return MustBuild(t, ds)
}

// MustBuild fails the test if ds does not load.
func MustBuild(t testing.TB, ds lattice.Dataset) *lattice.Model {
	t.Helper()
	m, err := lattice.New(ds)
	if err != nil {
		t.Fatalf("build lattice: %v", err)
	}
	return m
}
