package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"typedef":    KwTypedef,
		"struct":     KwStruct,
		"union":      KwUnion,
		"enum":       KwEnum,
		"const":      KwConst,
		"extern":     KwExtern,
		"unsigned":   KwUnsigned,
		"__inline__": KwInline,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	notKw := []string{
		"Typedef", "STRUCT", // case sensitive
		"int", "char", "void", "Uint8", "bool", // type names are identifiers
		"SDL_DECLSPEC", "SDLCALL",
	}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}
