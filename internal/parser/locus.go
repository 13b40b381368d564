package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Locus is a canonical locus identifier such as "f1r.1,@P0": folio, line
// number and an optional unit locator.
type Locus struct {
	Folio   string `parser:"@Folio"`
	Line    int    `parser:"'.' @Number"`
	Locator string `parser:"( ',' @Locator )?"`
}

var locusLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Folio", Pattern: `f[0-9]+[rv][0-9]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Locator", Pattern: `[@+*=&~][A-Za-z][A-Za-z0-9]*`},
	{Name: "Punct", Pattern: `[.,]`},
})

var locusParser = participle.MustBuild[Locus](
	participle.Lexer(locusLexer),
)

// ParseLocus parses s against the canonical locus grammar.
func ParseLocus(s string) (*Locus, error) {
	l, err := locusParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("non-canonical locus %q: %w", s, err)
	}
	if l.Line < 1 {
		return nil, fmt.Errorf("non-canonical locus %q: line number must be positive", s)
	}
	return l, nil
}

// IsCanonicalLocus reports whether s matches the canonical locus grammar.
func IsCanonicalLocus(s string) bool {
	_, err := ParseLocus(s)
	return err == nil
}

// String renders the locus in canonical form.
func (l Locus) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s.%d", l.Folio, l.Line)
	if l.Locator != "" {
		sb.WriteString(",")
		sb.WriteString(l.Locator)
	}
	return sb.String()
}

// FolioFor names the folio holding the given 1-based page: pages 1 and 2
// are f1r and f1v, pages 3 and 4 are f2r and f2v.
func FolioFor(page int) string {
	side := "r"
	if page%2 == 0 {
		side = "v"
	}
	return fmt.Sprintf("f%d%s", (page+1)/2, side)
}
