package parser

import (
	"strings"
	"testing"

	"github.com/rcliao/codebook/internal/model"
)

func TestParse_FullLine(t *testing.T) {
	entries := Parse("<f1r.1,@P0> daiin.qokeedy.ol")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Type != model.FullLine {
		t.Errorf("expected full_line, got %s", e.Type)
	}
	if e.Location != "f1r.1,@P0" {
		t.Errorf("expected location f1r.1,@P0, got %q", e.Location)
	}
	if e.Error != "" {
		t.Errorf("unexpected error %q", e.Error)
	}
	want := []string{"daiin", "qokeedy", "ol"}
	if strings.Join(e.Tokens, "|") != strings.Join(want, "|") {
		t.Errorf("expected tokens %v, got %v", want, e.Tokens)
	}
}

func TestParse_LineTypes(t *testing.T) {
	text := "# header comment\n\n<f1r.2>\tchedy.shedy\nqokain.dar\n   \n"
	entries := Parse(text)
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	wantTypes := []model.LineType{model.Comment, model.Blank, model.FullLine, model.ContentOnly, model.Blank}
	for i, e := range entries {
		if e.LineNumber != i+1 {
			t.Errorf("entry %d: expected line number %d, got %d", i, i+1, e.LineNumber)
		}
		if e.Type != wantTypes[i] {
			t.Errorf("line %d: expected %s, got %s", i+1, wantTypes[i], e.Type)
		}
		if e.Error != "" {
			t.Errorf("line %d: unexpected error %q", i+1, e.Error)
		}
	}
	if len(entries[0].Tokens) != 0 || len(entries[1].Tokens) != 0 {
		t.Error("comment and blank lines must not carry tokens")
	}
}

func TestParse_DropsEmptyTokens(t *testing.T) {
	e := Parse("daiin..ol. .chedy")[0]
	if len(e.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %v", e.Tokens)
	}
}

func TestParse_WhitespaceSplitting(t *testing.T) {
	e := Parse("<f2v.3> daiin ol\tchedy.dar")[0]
	if len(e.Tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %v", e.Tokens)
	}
}

func TestParse_MarkupStaysInToken(t *testing.T) {
	e := Parse("daiin<!f1r.1 note>.qokeedy<$>.[ch:sh]ol")[0]
	if e.Error != "" {
		t.Fatalf("unexpected error %q", e.Error)
	}
	want := []string{"daiin<!f1r.1 note>", "qokeedy<$>", "[ch:sh]ol"}
	if strings.Join(e.Tokens, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, e.Tokens)
	}
	if e.Type != model.ContentOnly {
		t.Errorf("alternative reading at line start must not look like a header, got %s", e.Type)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		typ  model.LineType
	}{
		{"unterminated header", "<f1r.1 daiin.ol", model.FullLine},
		{"header without separator", "<f1r> daiin", model.FullLine},
		{"header glued to content", "<f1r.1>daiin", model.FullLine},
		{"unterminated tag", "daiin.ol<!gap", model.ContentOnly},
		{"unterminated bracket", "daiin.[ch:sh", model.ContentOnly},
		{"unterminated brace", "{cth.y", model.ContentOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(tt.line)[0]
			if e.Error == "" {
				t.Fatalf("expected an error for %q", tt.line)
			}
			if e.Type != tt.typ {
				t.Errorf("expected type %s, got %s", tt.typ, e.Type)
			}
		})
	}
}

func TestParse_ContinuesAfterError(t *testing.T) {
	entries := Parse("<f1r.1 daiin\nqokeedy.ol\n")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Error == "" || entries[1].Error != "" {
		t.Errorf("expected only the first line to fail: %+v", entries)
	}
	if len(entries[1].Tokens) != 2 {
		t.Errorf("expected second line to parse, got %v", entries[1].Tokens)
	}
}

func TestParse_CRLF(t *testing.T) {
	entries := Parse("daiin.ol\r\nchedy\r\n")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Tokens[1] != "ol" {
		t.Errorf("carriage return leaked into token: %q", entries[0].Tokens[1])
	}
}

func TestParse_Empty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestLines_StopsEarly(t *testing.T) {
	n := 0
	for range Lines("a\nb\nc\nd\n") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected to stop after 2 entries, got %d", n)
	}
}
