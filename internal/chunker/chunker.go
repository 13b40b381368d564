// Package chunker splits transliterated text into page-aligned chunks for
// search indexing.
package chunker

import (
	"strings"

	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/parser"
)

const (
	DefaultTargetSize = 400
	DefaultMaxSize    = 600
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MaxSize:    DefaultMaxSize,
	}
}

// ChunkResult is a run of consecutive lines from one folio.
type ChunkResult struct {
	Text      string
	Folio     string
	StartLine int
	EndLine   int
}

// Chunk groups content lines into chunks. A new chunk starts whenever the
// folio named by a locus header changes or the current chunk would grow
// past TargetSize. Blank and comment lines are not indexed. A single line
// longer than MaxSize is split on token separators.
func Chunk(text string, opts Options) []ChunkResult {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}
	if opts.MaxSize < opts.TargetSize {
		opts.MaxSize = opts.TargetSize
	}

	raw := strings.Split(text, "\n")
	var (
		results []ChunkResult
		cur     ChunkResult
		lines   []string
		size    int
		folio   string
	)
	flush := func() {
		if len(lines) == 0 {
			return
		}
		cur.Text = strings.Join(lines, "\n")
		results = append(results, cur)
		lines, size = nil, 0
		cur = ChunkResult{}
	}

	for e := range parser.Lines(text) {
		if e.Type == model.Blank || e.Type == model.Comment {
			continue
		}
		if e.Location != "" {
			if f, _, ok := strings.Cut(e.Location, "."); ok {
				folio = f
			}
		}
		line := strings.TrimSpace(strings.TrimRight(raw[e.LineNumber-1], "\r"))
		if line == "" {
			continue
		}

		if len(lines) > 0 && (folio != cur.Folio || size+len(line) > opts.TargetSize) {
			flush()
		}

		if len(line) > opts.MaxSize {
			flush()
			for _, part := range hardSplit(line, opts.TargetSize) {
				results = append(results, ChunkResult{Text: part, Folio: folio, StartLine: e.LineNumber, EndLine: e.LineNumber})
			}
			continue
		}

		if len(lines) == 0 {
			cur = ChunkResult{Folio: folio, StartLine: e.LineNumber}
		}
		cur.EndLine = e.LineNumber
		lines = append(lines, line)
		size += len(line) + 1
	}
	flush()

	return results
}

// hardSplit breaks an oversized line between tokens, keeping each piece
// near target bytes.
func hardSplit(line string, target int) []string {
	var (
		parts []string
		sb    strings.Builder
	)
	for _, tok := range strings.FieldsFunc(line, func(r rune) bool {
		return r == parser.Separator || r == ' ' || r == '\t'
	}) {
		if sb.Len() > 0 && sb.Len()+len(tok)+1 > target {
			parts = append(parts, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(byte(parser.Separator))
		}
		sb.WriteString(tok)
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}
