package sanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "daiin", "daiin"},
		{"closed dollar tag", "qokeedy<$>", "qokeedy"},
		{"inline comment", "ol<!plant gap>", "ol"},
		{"inline comment with tag inside", "ch<!a<b>c>edy", "chcedy"},
		{"closed tag", "<%>chedy", "chedy"},
		{"line wrap marker", "shedy<->", "shedy"},
		{"partial comment opener", "otedy<!truncated", "otedy"},
		{"partial percent opener", "qokain<%abc", "qokain"},
		{"partial dollar opener", "dar<$", "dar"},
		{"alternative reading deleted", "[ch:sh]ol", "ol"},
		{"whole token alternative", "[a:o]", ""},
		{"structural symbols", "{cth}y*", "cthy"},
		{"loose angle", "ok>aiin<", "okaiin"},
		{"punctuation", "o,k;a.r", "okar"},
		{"whitespace", "  sho \t", "sho"},
		{"empty", "", ""},
		{"unmatched bracket kept", "a]b", "a]b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"daiin", "qokeedy<$>", "<!x>", "[[a]]", "[a<x>]b", "<!a.b", "{<}>", "a[b",
		"x]y[z", " <$> ", "[a:b]<!c>{d}*e,f.g;h", "<<!>>", "]][[", "$<%$>",
		"a b", "<x", "ok<!", "[", "]", "{[}]",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCustomAlternativePolicy(t *testing.T) {
	first := New(func(inner string) string {
		a, _, _ := strings.Cut(inner, ":")
		return a
	})
	if got := first.Sanitize("[ch:sh]ol"); got != "chol" {
		t.Errorf("expected chol, got %q", got)
	}
	// The default sanitizer is unaffected.
	if got := Sanitize("[ch:sh]ol"); got != "ol" {
		t.Errorf("expected ol, got %q", got)
	}
}

func TestAllDropsEmpty(t *testing.T) {
	got := New(nil).All([]string{"daiin", "<$>", "[a:b]", "ol"})
	if len(got) != 2 || got[0] != "daiin" || got[1] != "ol" {
		t.Errorf("unexpected result %v", got)
	}
}
