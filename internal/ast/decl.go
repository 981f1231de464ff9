package ast

import "sdl3gen/internal/source"

// Decl is a top-level header item. Implementations: *Define, *Typedef,
// *RecordDecl, *EnumDecl, *FuncDecl, *Include, *Skipped.
type Decl interface {
	declNode()
	Info() *DeclInfo
}

// DeclInfo is the provenance shared by every declaration.
type DeclInfo struct {
	Module string
	Doc    *Doc // nil when undocumented
	Cond   Cond
	Span   source.Span
}

func (d *DeclInfo) Info() *DeclInfo { return d }

// Since returns the availability tag of the declaration's doc, or nil.
func (d *DeclInfo) Since() *Version {
	if d.Doc == nil {
		return nil
	}
	return d.Doc.Since
}

// Define is a #define. Value is nil for empty bodies. Function-like macros
// set FuncLike and list their Params.
type Define struct {
	DeclInfo
	Name     Ident
	FuncLike bool
	Params   []Ident
	Value    Expr
	// Trailing is a /**< */ doc written after the value on the same line.
	Trailing *Doc
}

// Typedef is "typedef T Name;" where T is not an inline aggregate body.
type Typedef struct {
	DeclInfo
	Name Ident
	Type Type
}

type RecordKind uint8

const (
	RecordStruct RecordKind = iota
	RecordUnion
)

func (k RecordKind) String() string {
	if k == RecordUnion {
		return "union"
	}
	return "struct"
}

// RecordDecl is a struct or union. Opaque records have no body.
// Tag is the name after the keyword; Typedef the alias introduced by a
// surrounding typedef. Either may be nil, not both.
type RecordDecl struct {
	DeclInfo
	Kind    RecordKind
	Tag     *Ident
	Typedef *Ident
	Fields  []*Field
	Opaque  bool
}

// Name returns the typedef name, falling back to the tag.
func (r *RecordDecl) Name() string {
	if r.Typedef != nil {
		return r.Typedef.Name
	}
	return r.Tag.String()
}

// Field is a struct or union member. Anonymous nested aggregates have a nil
// Name and a non-nil Record.
type Field struct {
	Name   *Ident
	Type   Type
	Record *RecordDecl
	Bits   Expr // bit-field width, nil for ordinary fields
	Doc    *Doc
	Cond   Cond
	Span   source.Span
}

// EnumDecl is a C enum.
type EnumDecl struct {
	DeclInfo
	Tag     *Ident
	Typedef *Ident
	Values  []*EnumValue
}

// Name returns the typedef name, falling back to the tag.
func (e *EnumDecl) Name() string {
	if e.Typedef != nil {
		return e.Typedef.Name
	}
	return e.Tag.String()
}

// EnumValue is one enumerator. Value is nil when implicit.
type EnumValue struct {
	Name  Ident
	Value Expr
	Doc   *Doc
	Cond  Cond
	Span  source.Span
}

// FuncDecl is a function prototype or an inline function (body skipped).
type FuncDecl struct {
	DeclInfo
	Name   Ident
	Type   *FuncType
	Attrs  []Attribute
	Inline bool
}

// Include is an #include directive.
type Include struct {
	DeclInfo
	Path   string
	System bool // <...> form
}

// Skipped is a recognised-but-unsupported construct passed through silently.
type Skipped struct {
	DeclInfo
	Reason string
}

func (*Define) declNode()     {}
func (*Typedef) declNode()    {}
func (*RecordDecl) declNode() {}
func (*EnumDecl) declNode()   {}
func (*FuncDecl) declNode()   {}
func (*Include) declNode()    {}
func (*Skipped) declNode()    {}

// File is one parsed header.
type File struct {
	Path    string
	Module  string
	Library string
	FileID  source.FileID
	Doc     *Doc
	Decls   []Decl
}

// Defines returns the file's #define items in source order.
func (f *File) Defines() []*Define {
	var out []*Define
	for _, d := range f.Decls {
		if def, ok := d.(*Define); ok {
			out = append(out, def)
		}
	}
	return out
}
