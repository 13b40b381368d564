// Package parser splits transliterated manuscript text into line entries.
package parser

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/rcliao/codebook/internal/model"
)

const (
	// CommentMarker starts a comment line.
	CommentMarker = "#"
	// Separator delimits tokens within a line.
	Separator = '.'
)

// locusPattern is the loose <identifier>.<suffix> shape every locus header
// must have. The stricter canonical grammar lives in locus.go.
var locusPattern = regexp.MustCompile(`^[A-Za-z0-9]+\.[^\s<>\[\]{}]+$`)

// Parse splits text into one entry per physical line. It never fails:
// malformed lines carry a message in their Error field.
func Parse(text string) []model.LineEntry {
	var entries []model.LineEntry
	for e := range Lines(text) {
		entries = append(entries, e)
	}
	return entries
}

// Lines yields entries one at a time so large inputs can be consumed in
// bounded chunks.
func Lines(text string) iter.Seq[model.LineEntry] {
	return func(yield func(model.LineEntry) bool) {
		n := 0
		for raw := range strings.Lines(text) {
			n++
			if !yield(parseLine(n, strings.TrimRight(raw, "\r\n"))) {
				return
			}
		}
	}
}

func parseLine(n int, line string) model.LineEntry {
	e := model.LineEntry{LineNumber: n}
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		e.Type = model.Blank
		return e
	case strings.HasPrefix(trimmed, CommentMarker):
		e.Type = model.Comment
		return e
	}

	content := trimmed
	if headerLike(trimmed) {
		e.Type = model.FullLine
		closer := closerFor(trimmed[0])
		end := strings.IndexByte(trimmed, closer)
		if end < 0 {
			e.Error = fmt.Sprintf("unterminated locus header: missing %q", closer)
			return e
		}
		e.Location = trimmed[1:end]
		rest := trimmed[end+1:]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			e.Error = fmt.Sprintf("locus header %q must be followed by a tab or space", e.Location)
			return e
		}
		if !locusPattern.MatchString(e.Location) {
			e.Error = fmt.Sprintf("malformed locus header %q: expected <identifier>.<locus>", e.Location)
			return e
		}
		content = strings.TrimSpace(rest)
	} else {
		e.Type = model.ContentOnly
	}

	tokens, err := splitTokens(content)
	if err != nil {
		e.Error = err.Error()
		return e
	}
	e.Tokens = tokens
	return e
}

// headerLike reports whether a line opens with something that looks like a
// locus header. Square-bracket groups holding a ':' are alternative readings
// and belong to the content.
func headerLike(s string) bool {
	if len(s) < 2 || !isAlnum(s[1]) {
		return false
	}
	switch s[0] {
	case '<':
		return true
	case '[':
		group := s
		if end := strings.IndexByte(s, ']'); end >= 0 {
			group = s[:end]
		}
		return strings.IndexByte(group, Separator) >= 0 && !strings.Contains(group, ":")
	}
	return false
}

func closerFor(open byte) byte {
	switch open {
	case '<':
		return '>'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// splitTokens splits on the separator and on whitespace, ignoring both
// inside <...>, [...] and {...} groups. Zero-length tokens are dropped.
func splitTokens(s string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		stack  []int
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<' || c == '[' || c == '{':
			stack = append(stack, i)
		case len(stack) > 0 && c == closerFor(s[stack[len(stack)-1]]):
			stack = stack[:len(stack)-1]
		case len(stack) == 0 && (c == Separator || c == ' ' || c == '\t'):
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	if len(stack) > 0 {
		at := stack[len(stack)-1]
		return nil, fmt.Errorf("unterminated %q at column %d", s[at], at+1)
	}
	flush()
	return tokens, nil
}
