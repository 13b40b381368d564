// Package model defines the data types shared by the parser, validator,
// generator and slip detector.
package model

import "strings"

// LineType classifies a physical input line.
type LineType string

const (
	FullLine    LineType = "full_line"
	ContentOnly LineType = "content_only"
	Blank       LineType = "blank"
	Comment     LineType = "comment"
)

// LineEntry is one parsed input line. Entries are created once per line
// and never modified afterwards.
type LineEntry struct {
	LineNumber int      `json:"line_number"`
	Type       LineType `json:"line_type"`
	Location   string   `json:"location,omitempty"`
	Tokens     []string `json:"tokens,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// HasContent reports whether the entry takes part in token processing.
func (e LineEntry) HasContent() bool {
	return e.Error == "" && (e.Type == FullLine || e.Type == ContentOnly)
}

// OutputFormat selects how generated lines are rendered.
type OutputFormat string

const (
	FormatContent OutputFormat = "content"
	FormatLocus   OutputFormat = "locus"
)

// ValidFormats are the accepted output formats.
var ValidFormats = map[OutputFormat]bool{
	FormatContent: true,
	FormatLocus:   true,
}

// LineOutput is one generated line.
type LineOutput struct {
	Index      int      `json:"index"`
	Page       int      `json:"page"`
	LineOnPage int      `json:"line_on_page"`
	Locus      string   `json:"locus"`
	Tokens     []string `json:"tokens"`
	Windows    []int    `json:"windows"`
	EndWindow  int      `json:"end_window"`
}

// Content joins the tokens with the transliteration separator.
func (o LineOutput) Content() string {
	return strings.Join(o.Tokens, ".")
}

// Text renders the line in the given format. The locus form is a full
// line with an angle-delimited header.
func (o LineOutput) Text(f OutputFormat) string {
	if f != FormatLocus {
		return o.Content()
	}
	if len(o.Tokens) == 0 {
		return "<" + o.Locus + ">"
	}
	return "<" + o.Locus + "> " + o.Content()
}
