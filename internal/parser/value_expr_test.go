package parser

import (
	"testing"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
)

func TestValueExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
		node string
	}{
		{"1 + 2 * 3", "1 + 2 * 3", "binary"},
		{"(1u << 3)", "(1u << 3)", "paren"},
		{"(Uint8)0x01", "(Uint8)0x01", "cast"},
		{"(SDL_Keycode)'a'", "(SDL_Keycode)'a'", "cast"},
		{"(const char *)0", "(const char *)0", "cast"},
		{"(SDL_BUTTON_LEFT)", "(SDL_BUTTON_LEFT)", "paren"},
		{"SDL_static_cast(Uint32, 7)", "(Uint32)7", "cast"},
		{"SDL_BUTTON_MASK(SDL_BUTTON_LEFT)", "SDL_BUTTON_MASK(SDL_BUTTON_LEFT)", "call"},
		{"defined(FOO) && !defined BAR", "defined(FOO) && !defined(BAR)", "binary"},
		{"-1", "-1", "unary"},
		{"~0u", "~0u", "unary"},
		{"a - 1 - 2", "a - 1 - 2", "binary"},
		{"SDL_VERSIONNUM(3, 2, 0)", "SDL_VERSIONNUM(3, 2, 0)", "call"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rest, e, err := ValueExpr(lexInput(t, tt.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e == nil {
				t.Fatalf("no match")
			}
			if !rest.AtEOF() {
				t.Fatalf("not fully consumed, rest at %q", rest.Peek().Text)
			}
			if got := ast.ExprString(e); got != tt.want {
				t.Fatalf("ExprString = %q, want %q", got, tt.want)
			}
			var node string
			switch e.(type) {
			case *ast.BinaryExpr:
				node = "binary"
			case *ast.ParenExpr:
				node = "paren"
			case *ast.CastExpr:
				node = "cast"
			case *ast.CallExpr:
				node = "call"
			case *ast.UnaryExpr:
				node = "unary"
			default:
				node = "atom"
			}
			if node != tt.node {
				t.Fatalf("node = %s, want %s", node, tt.node)
			}
		})
	}
}

func TestValueExprPrecedence(t *testing.T) {
	_, e, err := ValueExpr(lexInput(t, "1 | 2 << 3 + 4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := e.(*ast.BinaryExpr)
	if !ok || or.Op != ast.ExprBinaryBitOr {
		t.Fatalf("top node = %#v, want |", e)
	}
	shl, ok := or.Y.(*ast.BinaryExpr)
	if !ok || shl.Op != ast.ExprBinaryShl {
		t.Fatalf("rhs of | = %#v, want <<", or.Y)
	}
	add, ok := shl.Y.(*ast.BinaryExpr)
	if !ok || add.Op != ast.ExprBinaryAdd {
		t.Fatalf("rhs of << = %#v, want +", shl.Y)
	}

	// left associativity
	_, e, _ = ValueExpr(lexInput(t, "8 - 4 - 2"))
	sub := e.(*ast.BinaryExpr)
	if _, ok := sub.X.(*ast.BinaryExpr); !ok {
		t.Fatalf("8 - 4 - 2 should group to the left")
	}
}

func TestValueExprSoftAndHard(t *testing.T) {
	for _, src := range []string{"sizeof(int)", ";", ""} {
		in := lexInput(t, src)
		rest, e, err := ValueExpr(in)
		if e != nil || err != nil || !rest.Same(in) {
			t.Fatalf("ValueExpr(%q) should be a soft non-match", src)
		}
	}

	tests := []struct {
		src  string
		code diag.Code
	}{
		{"1 +", diag.SynExpectExpression},
		{"(1", diag.SynUnclosedParen},
		{"-", diag.SynExpectExpression},
		{"defined(1)", diag.SynExpectIdentifier},
		{"1 + 2uu", diag.SynBadLiteralSuffix},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := ValueExpr(lexInput(t, tt.src))
			if got := errCode(t, err); got != tt.code {
				t.Fatalf("code = %s, want %s", got.ID(), tt.code.ID())
			}
		})
	}
}

func TestLooksLikeTypeName(t *testing.T) {
	tests := map[string]bool{
		"SDL_Keycode":       true,
		"SDL_PenInputFlags": true,
		"TTF_Font":          true,
		"Uint8":             true,
		"SDL_HAT_UP":        false,
		"SDL_arraysize":     false,
		"FOO":               false,
		"_Foo":              false,
	}
	for name, want := range tests {
		if got := looksLikeTypeName(name); got != want {
			t.Errorf("looksLikeTypeName(%q) = %v, want %v", name, got, want)
		}
	}
}
