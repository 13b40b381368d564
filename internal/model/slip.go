package model

// Adjacency names the relation between an expected window and the window
// a token was actually found in.
type Adjacency string

const (
	NotAdjacent Adjacency = ""
	Numeric     Adjacency = "numeric"
	Vertical    Adjacency = "vertical"
)

// Slip is a token that the expected window does not admit but an adjacent
// window does. Slips are analysis output only.
type Slip struct {
	Line           int       `json:"line"`
	Position       int       `json:"position"`
	Token          string    `json:"token"`
	ExpectedWindow int       `json:"expected_window"`
	MatchedWindow  int       `json:"matched_window"`
	Adjacency      Adjacency `json:"adjacency"`
}
