package ast

import (
	"strings"

	"sdl3gen/internal/source"
)

// Type is a C type expression. Implementations: *NamedType, *PointerType,
// *ArrayType, *FuncType.
type Type interface {
	typeNode()
	TypeSpan() source.Span
	// String renders the type as C source, e.g. "const char *".
	String() string
}

type TagKind uint8

const (
	TagNone TagKind = iota
	TagStruct
	TagUnion
	TagEnum
)

func (k TagKind) String() string {
	switch k {
	case TagStruct:
		return "struct"
	case TagUnion:
		return "union"
	case TagEnum:
		return "enum"
	}
	return ""
}

// NamedType is a base type: a builtin ("unsigned int"), a typedef name
// ("Uint32") or a tagged aggregate ("struct SDL_Window").
type NamedType struct {
	Name  string
	Tag   TagKind
	Const bool
	Span  source.Span
}

type PointerType struct {
	Elem  Type
	Const bool // the pointer itself is const: T *const
	Span  source.Span
}

type ArrayType struct {
	Elem Type
	Len  Expr // nil for []
	Span source.Span
}

// FuncType is a function signature, used for prototypes and for the pointee
// of function pointers.
type FuncType struct {
	Result   Type
	Params   []*Param
	Variadic bool
	Span     source.Span
}

// Param is one function parameter. Name is nil for unnamed parameters.
type Param struct {
	Name  *Ident
	Type  Type
	Attrs []Attribute
	Span  source.Span
}

func (*NamedType) typeNode()   {}
func (*PointerType) typeNode() {}
func (*ArrayType) typeNode()   {}
func (*FuncType) typeNode()    {}

func (t *NamedType) TypeSpan() source.Span   { return t.Span }
func (t *PointerType) TypeSpan() source.Span { return t.Span }
func (t *ArrayType) TypeSpan() source.Span   { return t.Span }
func (t *FuncType) TypeSpan() source.Span    { return t.Span }

func (t *NamedType) String() string {
	var b strings.Builder
	if t.Const {
		b.WriteString("const ")
	}
	if t.Tag != TagNone {
		b.WriteString(t.Tag.String())
		b.WriteByte(' ')
	}
	b.WriteString(t.Name)
	return b.String()
}

func (t *PointerType) String() string {
	if ft, ok := t.Elem.(*FuncType); ok {
		return ft.Result.String() + " (*)(" + paramsString(ft.Params, ft.Variadic) + ")"
	}
	s := t.Elem.String()
	if !strings.HasSuffix(s, "*") {
		s += " "
	}
	s += "*"
	if t.Const {
		s += " const"
	}
	return s
}

func (t *ArrayType) String() string {
	if t.Len == nil {
		return t.Elem.String() + "[]"
	}
	return t.Elem.String() + "[" + ExprString(t.Len) + "]"
}

func (t *FuncType) String() string {
	return t.Result.String() + " (" + paramsString(t.Params, t.Variadic) + ")"
}

func paramsString(params []*Param, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, p.Type.String())
	}
	if variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return "void"
	}
	return strings.Join(parts, ", ")
}

// Named returns a plain named type.
func Named(name string, sp source.Span) *NamedType {
	return &NamedType{Name: name, Span: sp}
}

// IsVoid reports the type "void" (without pointers).
func IsVoid(t Type) bool {
	n, ok := t.(*NamedType)
	return ok && n.Tag == TagNone && n.Name == "void"
}

// BaseName returns the named type at the bottom of pointers and arrays.
func BaseName(t Type) (*NamedType, bool) {
	for {
		switch x := t.(type) {
		case *NamedType:
			return x, true
		case *PointerType:
			t = x.Elem
		case *ArrayType:
			t = x.Elem
		default:
			return nil, false
		}
	}
}

// WalkTypes calls fn for every NamedType reachable from t, including the
// results and parameters of function types.
func WalkTypes(t Type, fn func(*NamedType)) {
	switch x := t.(type) {
	case nil:
	case *NamedType:
		fn(x)
	case *PointerType:
		WalkTypes(x.Elem, fn)
	case *ArrayType:
		WalkTypes(x.Elem, fn)
	case *FuncType:
		WalkTypes(x.Result, fn)
		for _, p := range x.Params {
			WalkTypes(p.Type, fn)
		}
	default:
		panic("ast: unknown type node")
	}
}
