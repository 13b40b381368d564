package model

// Mode selects how far validation goes.
type Mode string

const (
	ModeSyntax    Mode = "syntax"
	ModeSanitized Mode = "sanitized"
	ModeLattice   Mode = "lattice"
)

// ValidModes are the accepted validation modes.
var ValidModes = map[Mode]bool{
	ModeSyntax:    true,
	ModeSanitized: true,
	ModeLattice:   true,
}

// Includes reports whether m runs the checks of other.
func (m Mode) Includes(other Mode) bool {
	return modeRank[m] >= modeRank[other]
}

var modeRank = map[Mode]int{ModeSyntax: 1, ModeSanitized: 2, ModeLattice: 3}

// Status is the outcome recorded for one line.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// UnknownToken is a sanitized token that no window admits.
type UnknownToken struct {
	Position    int      `json:"position"`
	Token       string   `json:"token"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Diagnostic is the per-line status record of a validation run.
type Diagnostic struct {
	Line      int            `json:"line"`
	Type      LineType       `json:"line_type,omitempty"`
	Status    Status         `json:"status"`
	Location  string         `json:"location,omitempty"`
	Tokens    []string       `json:"tokens,omitempty"`
	Sanitized []string       `json:"sanitized,omitempty"`
	Unknown   []UnknownToken `json:"unknown,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Admissibility summarises the lattice replay of a token stream.
type Admissibility struct {
	Admissible int `json:"admissible"`
	Slipped    int `json:"slipped"`
	Desynced   int `json:"desynced"`
	Unknown    int `json:"unknown"`
}

// Report is the result of one validation run. Valid is true iff Errors is
// empty; warnings never affect it.
type Report struct {
	Mode               Mode           `json:"mode"`
	Strict             bool           `json:"strict"`
	Valid              bool           `json:"valid"`
	Diagnostics        []Diagnostic   `json:"diagnostics"`
	Errors             []Diagnostic   `json:"errors"`
	Warnings           []string       `json:"warnings"`
	TokenCount         int            `json:"token_count"`
	SanitizedCount     int            `json:"sanitized_count"`
	CoverageRate       *float64       `json:"coverage_rate,omitempty"`
	Admissibility      *Admissibility `json:"admissibility,omitempty"`
	LatticeFingerprint string         `json:"lattice_fingerprint,omitempty"`
	NormalizedText     string         `json:"normalized_text"`
	SanitizedText      string         `json:"sanitized_text,omitempty"`
}

// Chunk splits the diagnostics into pages of at most n records so callers
// can render large reports incrementally.
func (r *Report) Chunk(n int) [][]Diagnostic {
	if n <= 0 {
		n = len(r.Diagnostics)
	}
	var pages [][]Diagnostic
	for start := 0; start < len(r.Diagnostics); start += n {
		end := min(start+n, len(r.Diagnostics))
		pages = append(pages, r.Diagnostics[start:end])
	}
	return pages
}
