// Package model turns parsed and patched headers into the descriptor tables
// consumed by the emitter: groups of related constants, structs, properties,
// hints, and the remaining constants, aliases, callbacks and functions.
package model

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/layout"
	"sdl3gen/internal/source"
)

// GroupKind selects how a group of constants is emitted.
type GroupKind uint8

const (
	// GroupEnum is a C enum or a typedef whose values are plain constants.
	GroupEnum GroupKind = iota
	// GroupFlags values combine with bitwise operators.
	GroupFlags
	// GroupId is an opaque integer identifier type.
	GroupId
	// GroupLock is a spin lock word.
	GroupLock
)

func (k GroupKind) String() string {
	switch k {
	case GroupFlags:
		return "flags"
	case GroupId:
		return "id"
	case GroupLock:
		return "lock"
	}
	return "enum"
}

// Provenance is the origin shared by every model item.
type Provenance struct {
	Module string
	Doc    string
	Since  *ast.Version // availability, nil when untagged
	Cond   ast.Cond
	Span   source.Span
}

func (p *Provenance) Prov() *Provenance { return p }

// Item is one top-level entry of a module, in header order.
// Implementations: *Group, *Struct, *Constant, *Alias, *Callback,
// *Function, *Property, *Hint.
type Item interface {
	Prov() *Provenance
	CName() string
}

// Group is a named family of related constants.
type Group struct {
	Provenance
	Name   string
	Kind   GroupKind
	Base   ast.Type // underlying integer type
	Prefix string   // stripped from value names to form short names
	Values []*GroupValue
}

// GroupValue is one member of a group. Expr is nil for implicit enumerators.
type GroupValue struct {
	Provenance
	Name  string
	Short string
	Expr  ast.Expr
	Value Value

	entry *valueEntry
}

// Struct is a struct or union. Opaque structs have no fields.
type Struct struct {
	Provenance
	Name   string
	Tag    string // C tag, "" when anonymous
	Union  bool
	Opaque bool
	Fields []*Field
	// Size and Align follow the default target; zero for opaque structs.
	Size  int
	Align int
}

// Field is a struct or union member.
type Field struct {
	Name   string // "" for anonymous members
	Type   ast.Type
	CType  string  // C spelling of Type
	Record *Struct // body of a nested struct or union
	Bits   int     // bit-field width, 0 for ordinary members
	Offset int     // byte offset; for bit-fields, of the storage unit
	Doc    string
	Since  *ast.Version
	Cond   ast.Cond
	Span   source.Span

	bits ast.Expr
}

// PropertyType is the value type of a property, taken from its name suffix.
type PropertyType uint8

const (
	PropString PropertyType = iota
	PropNumber
	PropPointer
	PropBoolean
	PropFloat
)

var propertySuffixes = [...]string{
	PropString:  "_STRING",
	PropNumber:  "_NUMBER",
	PropPointer: "_POINTER",
	PropBoolean: "_BOOLEAN",
	PropFloat:   "_FLOAT",
}

func (t PropertyType) String() string {
	switch t {
	case PropNumber:
		return "number"
	case PropPointer:
		return "pointer"
	case PropBoolean:
		return "boolean"
	case PropFloat:
		return "float"
	}
	return "string"
}

// Property describes a key of an SDL property set.
type Property struct {
	Provenance
	Name  string // SDL_PROP_WINDOW_CREATE_TITLE_STRING
	Short string // WINDOW_CREATE_TITLE
	Key   string // "SDL.window.create.title"
	Type  PropertyType
}

// Hint describes a configuration hint.
type Hint struct {
	Provenance
	Name  string // SDL_HINT_APP_NAME
	Short string // APP_NAME
	Key   string // "SDL_APP_NAME"
}

// Constant is a #define with an evaluated value. Type is the cast target
// of typed constants and nil otherwise.
type Constant struct {
	Provenance
	Name  string
	Type  ast.Type
	Expr  ast.Expr
	Value Value

	entry *valueEntry
}

// Alias is a typedef, or a #define that renames a type.
type Alias struct {
	Provenance
	Name string
	Type ast.Type
}

// Callback is a typedef of a function pointer.
type Callback struct {
	Provenance
	Name string
	Type *ast.FuncType
}

// Function is an exported library function.
type Function struct {
	Provenance
	Name  string
	Type  *ast.FuncType
	Attrs []ast.Attribute
}

func (g *Group) CName() string    { return g.Name }
func (s *Struct) CName() string   { return s.Name }
func (p *Property) CName() string { return p.Name }
func (h *Hint) CName() string     { return h.Name }
func (c *Constant) CName() string { return c.Name }
func (a *Alias) CName() string    { return a.Name }
func (c *Callback) CName() string { return c.Name }
func (f *Function) CName() string { return f.Name }

// Module is the model of one header.
type Module struct {
	Name    string
	Library string
	Header  string
	Doc     string
	Items   []Item
}

// Groups returns the module's groups in header order.
func (m *Module) Groups() []*Group { return itemsOf[*Group](m) }

// Structs returns the module's structs in header order.
func (m *Module) Structs() []*Struct { return itemsOf[*Struct](m) }

// Properties returns the module's property descriptors in header order.
func (m *Module) Properties() []*Property { return itemsOf[*Property](m) }

// Hints returns the module's hint descriptors in header order.
func (m *Module) Hints() []*Hint { return itemsOf[*Hint](m) }

// Functions returns the module's functions in header order.
func (m *Module) Functions() []*Function { return itemsOf[*Function](m) }

func itemsOf[T Item](m *Module) []T {
	var out []T
	for _, it := range m.Items {
		if x, ok := it.(T); ok {
			out = append(out, x)
		}
	}
	return out
}

// Model is the complete description of one generator run.
type Model struct {
	Modules []*Module // sorted by name
	Layout  *layout.LayoutEngine

	syms *symbols
}

// Module returns the module named name.
func (m *Model) Module(name string) (*Module, bool) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return nil, false
}

// LookupType returns the item that defines a named C type: an *Alias,
// *Callback, *Group or *Struct.
func (m *Model) LookupType(t *ast.NamedType) (Item, bool) {
	it, ok := m.syms.types[typeKey(t)]
	return it, ok
}

// LookupValue returns the constant or group value named name.
func (m *Model) LookupValue(name string) (Value, bool) {
	e, ok := m.syms.values[name]
	if !ok {
		return Value{}, false
	}
	v, err := m.syms.eval(e)
	return v, err == nil
}

// EvalInt evaluates an integer constant expression, such as an array length.
func (m *Model) EvalInt(e ast.Expr) (int64, bool) {
	x, err := m.syms.expand(e)
	if err != nil {
		return 0, false
	}
	v, err := m.syms.evalExpr(x, nil)
	if err != nil || v.Kind != ValueInt {
		return 0, false
	}
	return v.Int64(), true
}

// External returns the C layout type of a platform API type name.
func External(name string) (string, bool) {
	t, ok := externalTypes[name]
	return t, ok
}

// FixedWidth returns the <stdint.h> type behind an SDL integer typedef.
func FixedWidth(name string) (string, bool) {
	t, ok := fixedWidth[name]
	return t, ok
}

func typeKey(t *ast.NamedType) string {
	if t.Tag != ast.TagNone {
		return t.Tag.String() + " " + t.Name
	}
	return t.Name
}
