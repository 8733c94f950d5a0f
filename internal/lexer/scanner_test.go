package lexer

import (
	"testing"

	"tlcc/internal/token"
)

func typesOf(tokens []token.Token) []token.Type {
	out := make([]token.Type, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestScanTokensPunctuationAndKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{"empty", "", []token.Type{token.EOF}},
		{"arrow vs minus", "- ->", []token.Type{token.Minus, token.Arrow, token.EOF}},
		{"two-char operators", "== != <= >= && ||",
			[]token.Type{token.Eq, token.Ne, token.Le, token.Ge, token.AndAnd, token.OrOr, token.EOF}},
		{"keyword vs identifier", "func foo int bar",
			[]token.Type{token.Func, token.Ident, token.IntType, token.Ident, token.EOF}},
		{"int vs float literal", "1 1.5", []token.Type{token.Int, token.Float, token.EOF}},
		{"line comment skipped", "let x = 1; // trailing\nlet y = 2;",
			[]token.Type{token.Let, token.Ident, token.Assign, token.Int, token.Semi,
				token.Let, token.Ident, token.Assign, token.Int, token.Semi, token.EOF}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := New(test.input)
			got := typesOf(s.ScanTokens())
			if len(s.Errors) > 0 {
				t.Fatalf("unexpected scan errors: %v", s.Errors)
			}
			if len(got) != len(test.want) {
				t.Fatalf("got %v, want %v", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Errorf("token %d: got %s, want %s", i, got[i], test.want[i])
				}
			}
		})
	}
}

func TestScanTokensErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"hello`},
		{"bare ampersand", "&"},
		{"bare pipe", "|"},
		{"unknown character", "#"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := New(test.input)
			s.ScanTokens()
			if len(s.Errors) == 0 {
				t.Errorf("expected scan errors for %q, got none", test.input)
			}
		})
	}
}

func TestScanTokensStringLiteralValue(t *testing.T) {
	s := New(`"hello world"`)
	tokens := s.ScanTokens()
	if len(s.Errors) > 0 {
		t.Fatalf("unexpected scan errors: %v", s.Errors)
	}
	if tokens[0].Type != token.String || tokens[0].Lexeme != "hello world" {
		t.Errorf("got %+v, want String %q", tokens[0], "hello world")
	}
}
