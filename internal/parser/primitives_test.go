package parser

import (
	"errors"
	"strings"
	"testing"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/lexer"
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

func lexInput(t *testing.T, src string) Input {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.h", []byte(src))
	return NewInput(lexer.All(fs.Get(id), lexer.Options{}))
}

func errCode(t *testing.T, err error) diag.Code {
	t.Helper()
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("expected diag.Diagnostic error, got %T (%v)", err, err)
	}
	return d.Code
}

func TestIdentConsumesExactly(t *testing.T) {
	names := []string{"a", "_", "SDL_Init", "x1_y2", "__FILE__", "SDL_HAT_CENTERED"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			in := lexInput(t, name+" rest")
			rest, id, err := Ident(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id == nil {
				t.Fatalf("Ident(%q) did not match", name)
			}
			if id.Name != name {
				t.Fatalf("name = %q, want %q", id.Name, name)
			}
			if got := int(id.Span.Len()); got != len(name) {
				t.Fatalf("span length = %d, want %d", got, len(name))
			}
			if rest.Peek().Text != "rest" {
				t.Fatalf("rest starts at %q, want %q", rest.Peek().Text, "rest")
			}
		})
	}
}

func TestIdentRejects(t *testing.T) {
	for _, src := range []string{"typedef", "1abc", "(", `"s"`, ""} {
		in := lexInput(t, src)
		rest, id, err := Ident(in)
		if id != nil || err != nil || !rest.Same(in) {
			t.Fatalf("Ident(%q) = %v, %v; want soft non-match", src, id, err)
		}
	}
}

func TestExprNoMatchKeepsInput(t *testing.T) {
	for _, src := range []string{"(", "+ 1", ";", "{", "*p", "", "-1", "sizeof(int)"} {
		t.Run(src, func(t *testing.T) {
			in := lexInput(t, src)
			rest, e, err := Expr(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e != nil {
				t.Fatalf("Expr(%q) matched %s", src, ast.ExprString(e))
			}
			if !rest.Same(in) {
				t.Fatalf("Expr(%q) consumed input", src)
			}
		})
	}
}

func TestExprPrefersIdent(t *testing.T) {
	in := lexInput(t, "SDL_HAT_UP 1")
	rest, e, err := Expr(in)
	if err != nil || e == nil {
		t.Fatalf("Expr failed: %v", err)
	}
	if _, ok := e.(*ast.Ident); !ok {
		t.Fatalf("expected *ast.Ident, got %T", e)
	}
	rest, e, err = Expr(rest)
	if err != nil || e == nil {
		t.Fatalf("second Expr failed: %v", err)
	}
	if lit, ok := e.(*ast.Literal); !ok || lit.Int != 1 {
		t.Fatalf("expected literal 1, got %#v", e)
	}
	if !rest.AtEOF() {
		t.Fatalf("expected EOF, got %s", rest.Peek().Kind)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.LitKind
		typ  ast.PrimType
		ival uint64
		fval float64
		str  string
	}{
		{src: "0x00", kind: ast.LitInt, typ: ast.PrimInt, ival: 0},
		{src: "42u", kind: ast.LitInt, typ: ast.PrimUInt, ival: 42},
		{src: "10UL", kind: ast.LitInt, typ: ast.PrimULong, ival: 10},
		{src: "7lu", kind: ast.LitInt, typ: ast.PrimULong, ival: 7},
		{src: "0xFFFFFFFF", kind: ast.LitInt, typ: ast.PrimUInt, ival: 0xFFFFFFFF},
		{src: "4294967295", kind: ast.LitInt, typ: ast.PrimLongLong, ival: 4294967295},
		{src: "1ull", kind: ast.LitInt, typ: ast.PrimULongLong, ival: 1},
		{src: "5LL", kind: ast.LitInt, typ: ast.PrimLongLong, ival: 5},
		{src: "07", kind: ast.LitInt, typ: ast.PrimInt, ival: 7},
		{src: "0b101", kind: ast.LitInt, typ: ast.PrimInt, ival: 5},
		{src: "1.5f", kind: ast.LitFloat, typ: ast.PrimFloat, fval: 1.5},
		{src: "2.0", kind: ast.LitFloat, typ: ast.PrimDouble, fval: 2},
		{src: "1e3", kind: ast.LitFloat, typ: ast.PrimDouble, fval: 1000},
		{src: "'a'", kind: ast.LitChar, typ: ast.PrimChar, ival: 'a', str: "a"},
		{src: `'\n'`, kind: ast.LitChar, typ: ast.PrimChar, ival: '\n', str: "\n"},
		{src: `'\x41'`, kind: ast.LitChar, typ: ast.PrimChar, ival: 'A', str: "A"},
		{src: `"ab" "cd"`, kind: ast.LitString, typ: ast.PrimString, str: "abcd"},
		{src: `"tab\there"`, kind: ast.LitString, typ: ast.PrimString, str: "tab\there"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in := lexInput(t, tt.src)
			rest, lit, err := Literal(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lit == nil {
				t.Fatalf("Literal(%q) did not match", tt.src)
			}
			if !rest.AtEOF() {
				t.Fatalf("literal not fully consumed, rest at %q", rest.Peek().Text)
			}
			if lit.Kind != tt.kind || lit.Type != tt.typ {
				t.Fatalf("kind/type = %d/%s, want %d/%s", lit.Kind, lit.Type, tt.kind, tt.typ)
			}
			switch tt.kind {
			case ast.LitInt, ast.LitChar:
				if lit.Int != tt.ival {
					t.Fatalf("value = %d, want %d", lit.Int, tt.ival)
				}
			case ast.LitFloat:
				if lit.Float != tt.fval {
					t.Fatalf("value = %v, want %v", lit.Float, tt.fval)
				}
			}
			if tt.str != "" && lit.Str != tt.str {
				t.Fatalf("str = %q, want %q", lit.Str, tt.str)
			}
			if tt.kind != ast.LitString && lit.Raw != tt.src {
				t.Fatalf("raw = %q, want %q", lit.Raw, tt.src)
			}
		})
	}
}

func TestLiteralHardErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
		msg  string
	}{
		{"10uu", diag.SynBadLiteralSuffix, "invalid suffix"},
		{"1lL", diag.SynBadLiteralSuffix, "invalid suffix"},
		{"1.0q", diag.SynBadLiteralSuffix, ""},
		{"0x", diag.SynBadLiteral, "no hexadecimal digits"},
		{"08", diag.SynBadLiteral, "invalid digit in octal literal"},
		{`"abc`, diag.SynBadLiteral, ""},
		{`'\q'`, diag.SynBadLiteral, ""},
		{"99999999999999999999", diag.SynBadLiteral, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in := lexInput(t, tt.src)
			rest, lit, err := Literal(in)
			if err == nil {
				t.Fatalf("Literal(%q) = %v, want error", tt.src, lit)
			}
			if got := errCode(t, err); got != tt.code {
				t.Fatalf("code = %s, want %s", got.ID(), tt.code.ID())
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("message %q lacks %q", err.Error(), tt.msg)
			}
			if !rest.Same(in) {
				t.Fatalf("failed literal consumed input")
			}
		})
	}
}

func TestCallArgs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		rest, args, err := CallArgs(lexInput(t, "()"))
		if err != nil || args == nil {
			t.Fatalf("CallArgs(()) = %v, %v", args, err)
		}
		if args.Len() != 0 || !rest.AtEOF() {
			t.Fatalf("expected zero args and EOF, got %d", args.Len())
		}
	})
	t.Run("two", func(t *testing.T) {
		_, args, err := CallArgs(lexInput(t, "(1, maxlen)"))
		if err != nil || args == nil {
			t.Fatalf("CallArgs failed: %v", err)
		}
		if got := ast.CallArgsString(*args); got != "(1, maxlen)" {
			t.Fatalf("args = %s", got)
		}
	})
	t.Run("no paren", func(t *testing.T) {
		in := lexInput(t, "x")
		rest, args, err := CallArgs(in)
		if args != nil || err != nil || !rest.Same(in) {
			t.Fatalf("expected soft non-match")
		}
	})
	t.Run("unclosed", func(t *testing.T) {
		_, _, err := CallArgs(lexInput(t, "(1"))
		if got := errCode(t, err); got != diag.SynUnclosedParen {
			t.Fatalf("code = %s", got.ID())
		}
	})
	t.Run("bad separator", func(t *testing.T) {
		_, _, err := CallArgs(lexInput(t, "(1 ; 2)"))
		if got := errCode(t, err); got != diag.SynUnexpectedToken {
			t.Fatalf("code = %s", got.ID())
		}
	})
}

func TestAttributeFormatString(t *testing.T) {
	in := lexInput(t, "SDL_PRINTF_FORMAT_STRING const char *fmt")
	rest, attr, err := Attribute(in, ast.AttrArg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attr == nil {
		t.Fatalf("attribute not recognised")
	}
	if attr.Name.Name != "SDL_PRINTF_FORMAT_STRING" || attr.Kind != ast.AttrArg {
		t.Fatalf("attr = %s/%s", attr.Name.Name, attr.Kind)
	}
	if attr.Args.Len() != 0 {
		t.Fatalf("expected empty CallArgs, got %d", attr.Args.Len())
	}
	if rest.Peek().Kind != token.KwConst {
		t.Fatalf("declaration left at %q, want const", rest.Peek().Text)
	}

	// the surrounding parameter parser picks up type and name
	_, p, err := param(in)
	if err != nil {
		t.Fatalf("param: %v", err)
	}
	if p.Name == nil || p.Name.Name != "fmt" {
		t.Fatalf("param name = %v", p.Name)
	}
	if got := p.Type.String(); got != "const char *" {
		t.Fatalf("param type = %q", got)
	}
	if len(p.Attrs) != 1 || p.Attrs[0].Name.Name != "SDL_PRINTF_FORMAT_STRING" {
		t.Fatalf("param attrs = %#v", p.Attrs)
	}
}

func TestAttributeWhitelists(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ast.AttrKind
		match bool
		nargs int
	}{
		{"arg marker at fn site", "SDL_PRINTF_FORMAT_STRING", ast.AttrFn, false, 0},
		{"fn marker at arg site", "SDL_PRINTF_VARARG_FUNC(1)", ast.AttrArg, false, 0},
		{"vararg func", "SDL_PRINTF_VARARG_FUNC(1)", ast.AttrFn, true, 1},
		{"scanf vararg", "SDL_SCANF_VARARG_FUNCV(2)", ast.AttrFn, true, 1},
		{"alloc size2", "SDL_ALLOC_SIZE2(1, 2)", ast.AttrFn, true, 2},
		{"malloc", "SDL_MALLOC void", ast.AttrFn, true, 0},
		{"buffer cap", "SDL_OUT_Z_CAP(maxlen) char *dst", ast.AttrArg, true, 1},
		{"plain ident", "fmt", ast.AttrArg, false, 0},
		{"keyword", "const", ast.AttrArg, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := lexInput(t, tt.src)
			rest, attr, err := Attribute(in, tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.match {
				if attr != nil || !rest.Same(in) {
					t.Fatalf("expected soft non-match, got %v", attr)
				}
				return
			}
			if attr == nil {
				t.Fatalf("expected match")
			}
			if attr.Args.Len() != tt.nargs {
				t.Fatalf("args = %d, want %d", attr.Args.Len(), tt.nargs)
			}
		})
	}
}

func TestAttributeMissingArgs(t *testing.T) {
	_, _, err := Attribute(lexInput(t, "SDL_PRINTF_VARARG_FUNC;"), ast.AttrFn)
	if got := errCode(t, err); got != diag.SynUnexpectedToken {
		t.Fatalf("code = %s", got.ID())
	}
}
