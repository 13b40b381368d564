// Package lattice holds the window lattice: per-window vocabularies,
// correction offsets and the token transition table. A Model is built once
// and is read-only afterwards, so it can be shared between goroutines.
package lattice

import (
	"encoding/hex"
	"encoding/json"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"

	"github.com/rcliao/codebook/internal/sanitize"
)

const (
	// DefaultWindowCount is the canonical number of windows.
	DefaultWindowCount = 50
	// MaxWindowCount bounds the window count a dataset may declare.
	MaxWindowCount = 1000
	// HubWindow is the canonical start window when a dataset names none.
	HubWindow = 0
)

// Window is one lattice state.
type Window struct {
	ID         int      `json:"id"`
	Correction int      `json:"correction_offset"`
	Vocabulary []string `json:"vocabulary"`
}

// Model is an immutable, validated lattice.
type Model struct {
	count       int
	hub         int
	windows     []Window
	index       map[string][]int // canonical token -> ascending window ids
	next        map[string]int   // canonical token -> raw next window
	tokens      []string         // every canonical token, sorted
	fingerprint string
}

// New validates ds and builds a model. It fails on the first problem
// found; a partially built model is never returned.
func New(ds Dataset) (*Model, error) {
	count := ds.WindowCount
	if count == 0 {
		count = DefaultWindowCount
	}
	if count < 1 || count > MaxWindowCount {
		return nil, loadErr(ErrMalformed, -1, "", "window count %d outside [1, %d]", count, MaxWindowCount)
	}

	hub := HubWindow
	if ds.HubWindow != nil {
		hub = *ds.HubWindow
	}
	if hub < 0 || hub >= count {
		return nil, loadErr(ErrMalformed, hub, "", "hub window outside [0, %d)", count)
	}

	m := &Model{
		count:   count,
		hub:     hub,
		windows: make([]Window, count),
		index:   make(map[string][]int),
		next:    make(map[string]int),
	}

	seen := make([]bool, count)
	for _, ws := range ds.Windows {
		if ws.ID < 0 || ws.ID >= count {
			return nil, loadErr(ErrMalformed, ws.ID, "", "id outside [0, %d)", count)
		}
		if seen[ws.ID] {
			return nil, loadErr(ErrDuplicateWindow, ws.ID, "", "")
		}
		seen[ws.ID] = true
		if ws.CorrectionOffset < -count || ws.CorrectionOffset > count {
			return nil, loadErr(ErrOffsetRange, ws.ID, "", "%d outside [%d, %d]", ws.CorrectionOffset, -count, count)
		}
		m.windows[ws.ID] = Window{ID: ws.ID, Correction: ws.CorrectionOffset}
	}
	for id, ok := range seen {
		if !ok {
			return nil, loadErr(ErrMalformed, id, "", "window missing from dataset")
		}
	}

	entries := slices.Clone(ds.Windows)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	total := 0
	for _, ws := range entries {
		inWindow := make(map[string]bool, len(ws.Vocabulary))
		for _, raw := range ws.Vocabulary {
			tok := sanitize.Sanitize(raw)
			if !IsCanonicalToken(tok) {
				return nil, loadErr(ErrMalformed, ws.ID, raw, "vocabulary token is not canonical (sanitized %q)", tok)
			}
			if inWindow[tok] {
				return nil, loadErr(ErrInconsistentVocabulary, ws.ID, raw, "listed twice as %q", tok)
			}
			inWindow[tok] = true

			target, ok := ds.Transitions[raw]
			if !ok {
				target, ok = ds.Transitions[tok]
			}
			if !ok {
				return nil, loadErr(ErrMissingTransition, ws.ID, raw, "")
			}
			if target < 0 || target >= count {
				return nil, loadErr(ErrTransitionRange, ws.ID, raw, "%d outside [0, %d)", target, count)
			}
			if prev, dup := m.next[tok]; dup && prev != target {
				return nil, loadErr(ErrInconsistentVocabulary, ws.ID, raw,
					"canonical token %q transitions to both %d and %d", tok, prev, target)
			}
			m.next[tok] = target
			m.index[tok] = append(m.index[tok], ws.ID)
			m.windows[ws.ID].Vocabulary = append(m.windows[ws.ID].Vocabulary, tok)
			total++
		}
	}
	if total == 0 {
		return nil, loadErr(ErrMalformed, -1, "", "no vocabulary in any window")
	}

	m.tokens = make([]string, 0, len(m.index))
	for tok := range m.index {
		m.tokens = append(m.tokens, tok)
	}
	sort.Strings(m.tokens)
	m.fingerprint = m.computeFingerprint()
	return m, nil
}

// IsCanonicalToken reports whether tok can stand as a vocabulary entry:
// non-empty, lowercase, and free of separators, whitespace and markup.
func IsCanonicalToken(tok string) bool {
	if tok == "" || strings.ContainsAny(tok, ".#<>[]{}") {
		return false
	}
	for _, r := range tok {
		if unicode.IsSpace(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func (m *Model) computeFingerprint() string {
	canon := struct {
		Count       int            `json:"count"`
		Hub         int            `json:"hub"`
		Windows     []Window       `json:"windows"`
		Transitions map[string]int `json:"transitions"`
	}{m.count, m.hub, m.windows, m.next}
	b, _ := json.Marshal(canon)
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Fingerprint identifies the lattice snapshot. Datasets that differ only
// in formatting or raw markup share a fingerprint.
func (m *Model) Fingerprint() string { return m.fingerprint }

// WindowCount returns W.
func (m *Model) WindowCount() int { return m.count }

// Hub returns the start window used when none is given.
func (m *Model) Hub() int { return m.hub }

// Window returns a copy of window id.
func (m *Model) Window(id int) (Window, bool) {
	if id < 0 || id >= m.count {
		return Window{}, false
	}
	w := m.windows[id]
	w.Vocabulary = slices.Clone(w.Vocabulary)
	return w, true
}

// VocabularySize returns the number of tokens window id admits.
func (m *Model) VocabularySize(id int) int {
	if id < 0 || id >= m.count {
		return 0
	}
	return len(m.windows[id].Vocabulary)
}

// TokenAt returns the i-th vocabulary token of window id.
func (m *Model) TokenAt(id, i int) string {
	return m.windows[id].Vocabulary[i]
}

// TokenCount returns the number of distinct canonical tokens.
func (m *Model) TokenCount() int { return len(m.tokens) }

// WindowsOf returns every window whose vocabulary holds tok, ascending.
// The result is empty for unknown tokens.
func (m *Model) WindowsOf(tok string) []int {
	return slices.Clone(m.index[tok])
}

// Known reports whether some window admits tok.
func (m *Model) Known(tok string) bool {
	return len(m.index[tok]) > 0
}

// Contains reports whether window id admits tok.
func (m *Model) Contains(id int, tok string) bool {
	return slices.Contains(m.index[tok], id)
}

// CorrectionOf returns the correction offset of window id.
func (m *Model) CorrectionOf(id int) int {
	if id < 0 || id >= m.count {
		return 0
	}
	return m.windows[id].Correction
}

// RawNext returns the encoded raw next window of tok.
func (m *Model) RawNext(tok string) (int, bool) {
	n, ok := m.next[tok]
	return n, ok
}

// Next returns the corrected next window after selecting tok in window id:
// the raw target plus id's correction offset, modulo W.
func (m *Model) Next(id int, tok string) (int, bool) {
	raw, ok := m.next[tok]
	if !ok || id < 0 || id >= m.count {
		return 0, false
	}
	return m.mod(raw + m.windows[id].Correction), true
}

// Inhabited returns id if its vocabulary is non-empty, otherwise the next
// window upward (mod W) that has one. New guarantees one exists.
func (m *Model) Inhabited(id int) int {
	for i := 0; i < m.count; i++ {
		w := m.mod(id + i)
		if len(m.windows[w].Vocabulary) > 0 {
			return w
		}
	}
	return id
}

func (m *Model) mod(v int) int {
	v %= m.count
	if v < 0 {
		v += m.count
	}
	return v
}
