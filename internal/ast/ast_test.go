package ast

import (
	"testing"

	"sdl3gen/internal/source"
)

func lit(raw string, v uint64) *Literal {
	return &Literal{Kind: LitInt, Type: PrimInt, Raw: raw, Digits: raw, Int: v}
}

func TestCastToIsIdempotent(t *testing.T) {
	u8 := Named("Uint8", source.Span{})
	once := CastTo(u8, lit("0x00", 0))
	twice := CastTo(u8, once)
	if ExprString(once) != ExprString(twice) {
		t.Fatalf("CastTo twice = %q, once = %q", ExprString(twice), ExprString(once))
	}
	c, ok := twice.(*CastExpr)
	if !ok {
		t.Fatalf("CastTo() = %T, want *CastExpr", twice)
	}
	if _, ok := c.X.(*Literal); !ok {
		t.Errorf("cast operand = %T, want *Literal", c.X)
	}
}

func TestCastToReplacesParenthesisedCast(t *testing.T) {
	inner := &ParenExpr{X: &CastExpr{Type: Named("int", source.Span{}), X: lit("1", 1)}}
	got := ExprString(CastTo(Named("Uint32", source.Span{}), inner))
	if got != "(Uint32)1" {
		t.Errorf("CastTo() = %q, want (Uint32)1", got)
	}
}

func TestExprString(t *testing.T) {
	e := &ParenExpr{X: &BinaryExpr{
		Op: ExprBinaryShl,
		X:  lit("1u", 1),
		Y: &CallExpr{Fun: &Ident{Name: "SDL_BUTTON"}, Args: CallArgs{Args: []Expr{
			&UnaryExpr{Op: ExprUnaryNeg, X: &Ident{Name: "X"}},
		}}},
	}}
	if got, want := ExprString(e), "(1u << SDL_BUTTON(-X))"; got != want {
		t.Errorf("ExprString() = %q, want %q", got, want)
	}
	if got := ExprString(&DefinedExpr{Name: &Ident{Name: "SDL_PLATFORM_WINDOWS"}}); got != "defined(SDL_PLATFORM_WINDOWS)" {
		t.Errorf("defined = %q", got)
	}
}

func TestIdentsVisitsInOrder(t *testing.T) {
	e := &BinaryExpr{Op: ExprBinaryBitOr,
		X: &Ident{Name: "A"},
		Y: &CallExpr{Fun: &Ident{Name: "M"}, Args: CallArgs{Args: []Expr{&Ident{Name: "B"}, lit("2", 2)}}},
	}
	var got []string
	Idents(e, func(id *Ident) { got = append(got, id.Name) })
	want := []string{"A", "M", "B"}
	if len(got) != len(want) {
		t.Fatalf("Idents() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Idents()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTypeString(t *testing.T) {
	constChar := &NamedType{Name: "char", Const: true}
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"named", Named("Uint32", source.Span{}), "Uint32"},
		{"tagged", &NamedType{Name: "SDL_Window", Tag: TagStruct}, "struct SDL_Window"},
		{"const char ptr", &PointerType{Elem: constChar}, "const char *"},
		{"double ptr", &PointerType{Elem: &PointerType{Elem: constChar}}, "const char **"},
		{"const ptr", &PointerType{Elem: Named("void", source.Span{}), Const: true}, "void * const"},
		{"array", &ArrayType{Elem: Named("Uint8", source.Span{}), Len: lit("16", 16)}, "Uint8[16]"},
		{"func ptr", &PointerType{Elem: &FuncType{
			Result: Named("void", source.Span{}),
			Params: []*Param{{Type: &PointerType{Elem: Named("void", source.Span{})}}, {Type: Named("int", source.Span{})}},
		}}, "void (*)(void *, int)"},
		{"no params", &FuncType{Result: Named("int", source.Span{})}, "int (void)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBaseNameAndWalk(t *testing.T) {
	typ := &PointerType{Elem: &FuncType{
		Result: Named("SDL_PowerState", source.Span{}),
		Params: []*Param{{Type: &PointerType{Elem: Named("int", source.Span{})}}},
	}}
	if _, ok := BaseName(typ); ok {
		t.Error("BaseName() through a function pointer must fail")
	}
	var names []string
	WalkTypes(typ, func(n *NamedType) { names = append(names, n.Name) })
	if len(names) != 2 || names[0] != "SDL_PowerState" || names[1] != "int" {
		t.Errorf("WalkTypes() = %v", names)
	}
	n, ok := BaseName(&ArrayType{Elem: &PointerType{Elem: Named("char", source.Span{})}})
	if !ok || n.Name != "char" {
		t.Errorf("BaseName() = %v, %v", n, ok)
	}
}

func TestVersionCompare(t *testing.T) {
	v320 := Version{3, 2, 0}
	cases := []struct {
		o    Version
		want int
	}{
		{Version{3, 2, 0}, 0},
		{Version{3, 1, 9}, 1},
		{Version{3, 4, 0}, -1},
		{Version{2, 30, 0}, 1},
		{Version{3, 2, 1}, -1},
	}
	for _, c := range cases {
		if got := v320.Compare(c.o); got != c.want {
			t.Errorf("3.2.0 Compare(%v) = %d, want %d", c.o, got, c.want)
		}
	}
	if v320.String() != "3.2.0" {
		t.Errorf("String() = %q", v320.String())
	}
}

func TestCondString(t *testing.T) {
	var c Cond
	if !c.IsZero() || c.String() != "" {
		t.Fatal("zero Cond must render empty")
	}
	win := c.And(&DefinedExpr{Name: &Ident{Name: "SDL_PLATFORM_WINDOWS"}})
	both := win.And(&BinaryExpr{Op: ExprBinaryLogicalOr, X: &Ident{Name: "A"}, Y: &Ident{Name: "B"}})
	if len(win) != 1 {
		t.Fatalf("And() modified receiver: %d", len(win))
	}
	if got, want := both.String(), "defined(SDL_PLATFORM_WINDOWS) && (A || B)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
