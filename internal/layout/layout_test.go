package layout

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/source"
)

type mapResolver map[string]Def

func (r mapResolver) Resolve(t *ast.NamedType) (Def, bool) {
	key := t.Name
	if t.Tag != ast.TagNone {
		key = t.Tag.String() + " " + t.Name
	}
	d, ok := r[key]
	return d, ok
}

func (r mapResolver) ArrayLen(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	return int64(lit.Int), true
}

func named(name string) *ast.NamedType { return ast.Named(name, source.Nowhere) }

func ptr(t ast.Type) *ast.PointerType { return &ast.PointerType{Elem: t} }

func array(t ast.Type, n uint64) *ast.ArrayType {
	return &ast.ArrayType{Elem: t, Len: &ast.Literal{Kind: ast.LitInt, Type: ast.PrimInt, Raw: strconv.FormatUint(n, 10), Int: n}}
}

func record(name string, union bool, fields ...Member) Def {
	return Def{Kind: DefRecord, Name: name, Union: union, Fields: fields}
}

func member(t ast.Type) Member { return Member{Type: t} }

func TestScalarLayouts(t *testing.T) {
	linux := New(X86_64LinuxGNU(), mapResolver{})
	windows := New(X86_64Windows(), mapResolver{})
	tests := []struct {
		typ   ast.Type
		size  int
		align int
		win   int
	}{
		{named("char"), 1, 1, 1},
		{named("short"), 2, 2, 2},
		{named("int"), 4, 4, 4},
		{named("long"), 8, 8, 4},
		{named("unsigned long long"), 8, 8, 8},
		{named("double"), 8, 8, 8},
		{named("size_t"), 8, 8, 8},
		{named("wchar_t"), 4, 4, 2},
		{ptr(named("void")), 8, 8, 8},
		{&ast.FuncType{Result: named("void")}, 8, 8, 8},
		{array(named("uint16_t"), 3), 6, 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			l, err := linux.LayoutOf(tt.typ)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Size != tt.size || l.Align != tt.align {
				t.Fatalf("layout = %d/%d, want %d/%d", l.Size, l.Align, tt.size, tt.align)
			}
			if size, _ := windows.SizeOf(tt.typ); size != tt.win {
				t.Fatalf("windows size = %d, want %d", size, tt.win)
			}
		})
	}
}

func TestRecordLayouts(t *testing.T) {
	types := mapResolver{
		"Uint8":  {Kind: DefAlias, Alias: named("uint8_t")},
		"Uint32": {Kind: DefAlias, Alias: named("uint32_t")},
		"SDL_Point": record("SDL_Point", false,
			member(named("int")), member(named("int"))),
		"SDL_Mixed": record("SDL_Mixed", false,
			member(named("Uint8")), member(named("double")), member(named("Uint8"))),
		"SDL_Union": record("SDL_Union", true,
			member(named("Uint8")), member(array(named("Uint32"), 3)), member(named("short"))),
		"struct SDL_Nested": record("SDL_Nested", false,
			member(named("char")), member(named("SDL_Point")), member(ptr(named("struct SDL_Nested")))),
		"SDL_Bits": record("SDL_Bits", false,
			Member{Type: named("Uint32"), Bits: 30},
			Member{Type: named("Uint32"), Bits: 4},
			Member{Type: named("Uint8"), Bits: 2}),
		"SDL_Flex": record("SDL_Flex", false,
			member(named("int")), member(&ast.ArrayType{Elem: named("short")})),
		"SDL_Empty": record("SDL_Empty", false),
	}
	e := New(X86_64LinuxGNU(), types)
	tests := []struct {
		typ     ast.Type
		size    int
		align   int
		offsets []int
	}{
		{named("SDL_Point"), 8, 4, []int{0, 4}},
		{named("SDL_Mixed"), 24, 8, []int{0, 8, 16}},
		{named("SDL_Union"), 12, 4, []int{0, 0, 0}},
		{&ast.NamedType{Name: "SDL_Nested", Tag: ast.TagStruct}, 24, 8, []int{0, 4, 16}},
		{named("SDL_Bits"), 8, 4, []int{0, 4, 4}},
		{named("SDL_Flex"), 4, 4, []int{0, 4}},
		{named("SDL_Empty"), 0, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			l, err := e.LayoutOf(tt.typ)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Size != tt.size || l.Align != tt.align {
				t.Fatalf("layout = %d/%d, want %d/%d", l.Size, l.Align, tt.size, tt.align)
			}
			if !slices.Equal(l.FieldOffsets, tt.offsets) {
				t.Fatalf("offsets = %v, want %v", l.FieldOffsets, tt.offsets)
			}
		})
	}

	off, err := e.FieldOffset(named("SDL_Mixed"), 2)
	if err != nil || off != 16 {
		t.Fatalf("FieldOffset = %d, %v", off, err)
	}
}

func TestLayoutErrors(t *testing.T) {
	types := mapResolver{
		"SDL_Window": {Kind: DefOpaque, Name: "SDL_Window"},
		"SDL_A":      record("SDL_A", false, member(named("SDL_B"))),
		"SDL_B":      record("SDL_B", false, member(named("int")), member(named("SDL_A"))),
		"SDL_Holder": record("SDL_Holder", false, member(named("SDL_Window"))),
		"SDL_Bad":    record("SDL_Bad", false, member(&ast.ArrayType{Elem: named("int"), Len: ast.NewIdent("N", source.Nowhere)})),
	}
	e := New(X86_64LinuxGNU(), types)
	tests := []struct {
		name string
		typ  ast.Type
		kind LayoutErrorKind
	}{
		{"opaque by value", named("SDL_Holder"), LayoutErrIncomplete},
		{"unknown", named("SDL_Missing"), LayoutErrIncomplete},
		{"cycle", named("SDL_A"), LayoutErrRecursiveUnsized},
		{"length", named("SDL_Bad"), LayoutErrLengthConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.LayoutOf(tt.typ)
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LayoutError, got %v", err)
			}
			if le.Kind != tt.kind {
				t.Fatalf("kind = %d, want %d (%v)", le.Kind, tt.kind, le)
			}
		})
	}

	// pointers to incomplete records are fine
	if size, err := e.SizeOf(ptr(named("SDL_Window"))); err != nil || size != 8 {
		t.Fatalf("pointer to opaque = %d, %v", size, err)
	}

	// a failed layout is cached, not recomputed into a different answer
	_, first := e.LayoutOf(named("SDL_A"))
	_, second := e.LayoutOf(named("SDL_A"))
	if first == nil || second == nil || first.Error() != second.Error() {
		t.Fatalf("cached error differs: %v / %v", first, second)
	}
}
