// Package sanitize strips transliteration markup from tokens.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	inlineComment = regexp.MustCompile(`<![^>]*>`)
	closedTag     = regexp.MustCompile(`<[^>]*>`)
	partialOpener = regexp.MustCompile(`<[!%$].*$`)
	alternatives  = regexp.MustCompile(`\[[^\]]*\]`)

	structural  = strings.NewReplacer("{", "", "}", "", "*", "", "$", "", "<", "", ">", "")
	punctuation = strings.NewReplacer(",", "", ".", "", ";", "")
)

// AlternativeFunc decides what replaces a bracketed alternative-reading
// span such as "[ch:sh]". It receives the text between the brackets.
// The result must not contain markup characters or sanitizing stops
// being idempotent.
type AlternativeFunc func(inner string) string

// DeleteAlternatives drops the whole span. Ambiguous readings are not
// resolved to either side.
func DeleteAlternatives(string) string { return "" }

// Sanitizer applies the removal passes in a fixed order.
type Sanitizer struct {
	alternatives AlternativeFunc
}

// New returns a sanitizer using fn for alternative-reading spans. A nil fn
// means DeleteAlternatives.
func New(fn AlternativeFunc) *Sanitizer {
	if fn == nil {
		fn = DeleteAlternatives
	}
	return &Sanitizer{alternatives: fn}
}

var std = New(nil)

// Sanitize strips markup from token using the default policy.
func Sanitize(token string) string {
	return std.Sanitize(token)
}

// Sanitize strips markup from token. Later passes assume the earlier ones
// already collapsed annotation spans, so the order is significant.
func (s *Sanitizer) Sanitize(token string) string {
	t := inlineComment.ReplaceAllString(token, "")
	t = closedTag.ReplaceAllString(t, "")
	t = partialOpener.ReplaceAllString(t, "")
	t = alternatives.ReplaceAllStringFunc(t, func(span string) string {
		return s.alternatives(span[1 : len(span)-1])
	})
	t = structural.Replace(t)
	t = punctuation.Replace(t)
	return strings.TrimSpace(t)
}

// All sanitizes every token and drops the ones that end up empty.
func (s *Sanitizer) All(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if c := s.Sanitize(tok); c != "" {
			out = append(out, c)
		}
	}
	return out
}
