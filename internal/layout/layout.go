// Package layout computes C ABI sizes, alignments and field offsets of the
// declared types for a target data model.
package layout

import (
	"sdl3gen/internal/ast"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Record-only:
	FieldOffsets []int
}

// DefKind classifies a named type for layout purposes.
type DefKind uint8

const (
	DefAlias DefKind = iota + 1
	DefRecord
	DefOpaque
)

// Def is what a Resolver knows about a named type. Enums are aliases of
// their underlying integer type.
type Def struct {
	Kind   DefKind
	Name   string
	Alias  ast.Type
	Union  bool
	Fields []Member
}

// Member is one record member. Bits is the bit-field width, 0 otherwise.
type Member struct {
	Type ast.Type
	Bits int
}

// Resolver supplies named type definitions and constant array lengths.
type Resolver interface {
	Resolve(t *ast.NamedType) (Def, bool)
	ArrayLen(e ast.Expr) (int64, bool)
}

// LayoutEngine computes memory layout for types.
type LayoutEngine struct {
	Target Target
	Types  Resolver

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, types Resolver) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  types,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []string
	index map[string]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[string]int, 32),
	}
}

// LayoutOf computes the layout of a type, caching named types.
func (e *LayoutEngine) LayoutOf(t ast.Type) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t ast.Type, state *layoutState) (TypeLayout, *LayoutError) {
	switch x := t.(type) {
	case *ast.PointerType, *ast.FuncType:
		return e.ptrLayout(), nil
	case *ast.ArrayType:
		return e.arrayLayout(x, state)
	case *ast.NamedType:
		return e.namedLayout(x, state)
	}
	return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: "<nil>"}
}

func (e *LayoutEngine) namedLayout(t *ast.NamedType, state *layoutState) (TypeLayout, *LayoutError) {
	if t.Tag == ast.TagNone {
		if l, ok := e.scalarLayout(t.Name); ok {
			return l, nil
		}
	}
	key := t.Name
	if t.Tag != ast.TagNone {
		key = t.Tag.String() + " " + t.Name
	}
	if cached, ok := e.cache.get(key); ok {
		return cached.Layout, cached.Err
	}
	if idx, ok := state.index[key]; ok {
		cycle := append(append([]string(nil), state.stack[idx:]...), key)
		err := &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: key, Cycle: cycle}
		e.cache.put(key, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[key] = len(state.stack)
	state.stack = append(state.stack, key)
	layout, err := e.computeNamed(t, key, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, key)

	e.cache.put(key, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t ast.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t ast.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a record member.
func (e *LayoutEngine) FieldOffset(record ast.Type, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(record)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// RecordLayout lays out a record body directly, for anonymous records that
// have no name to resolve.
func (e *LayoutEngine) RecordLayout(def Def) (TypeLayout, error) {
	l, err := e.recordLayout(def, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}
