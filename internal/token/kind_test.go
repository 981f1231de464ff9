package token_test

import (
	"testing"

	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 1, End: 1}}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.IntLit, token.FloatLit, token.CharLit, token.StringLit} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwConst, token.Plus, token.RawText} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestKindClasses(t *testing.T) {
	if !tok(token.KwTypedef).IsKeyword() || !tok(token.KwSizeof).IsKeyword() {
		t.Fatal("keyword range broken")
	}
	if tok(token.Ident).IsKeyword() || tok(token.IntLit).IsKeyword() {
		t.Fatal("non-keywords reported as keywords")
	}
	for _, k := range []token.Kind{token.Plus, token.Ellipsis, token.ShrAssign, token.Backslash, token.Tilde} {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	if tok(token.Hash).IsPunctOrOp() {
		t.Fatal("# is a directive marker, not an operator")
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.Ident:     "Ident",
		token.KwTypedef: "typedef",
		token.Ellipsis:  "...",
		token.HashHash:  "##",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
	if got := token.Kind(250).String(); got != "Kind(?)" {
		t.Errorf("unknown kind String() = %q", got)
	}
}

func TestStartsLine(t *testing.T) {
	first := token.Token{Kind: token.Hash, Span: source.Span{Start: 0, End: 1}}
	if !first.StartsLine() {
		t.Error("token at offset 0 must start a line")
	}
	mid := token.Token{Kind: token.Ident, Span: source.Span{Start: 5, End: 6},
		Leading: []token.Trivia{{Kind: token.TriviaSpace}}}
	if mid.StartsLine() {
		t.Error("token after spaces must not start a line")
	}
	next := token.Token{Kind: token.Hash, Span: source.Span{Start: 9, End: 10},
		Leading: []token.Trivia{{Kind: token.TriviaSpace}, {Kind: token.TriviaNewline}}}
	if !next.StartsLine() {
		t.Error("token after newline must start a line")
	}
}
