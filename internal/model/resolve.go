package model

import (
	"errors"
	"fmt"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/layout"
)

// resolve checks every type reference and evaluates every value, in module
// and header order.
func (m *Model) resolve() error {
	s := m.syms
	for _, mod := range m.Modules {
		for _, it := range mod.Items {
			if err := s.resolveItem(it); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *symbols) resolveItem(it Item) error {
	switch x := it.(type) {
	case *Group:
		if err := s.resolveType(x.Base); err != nil {
			return err
		}
		for _, v := range x.Values {
			val, err := s.eval(v.entry)
			if err != nil {
				return err
			}
			v.Value = val
		}
	case *Struct:
		return s.resolveStruct(x)
	case *Constant:
		if x.Type != nil {
			if err := s.resolveType(x.Type); err != nil {
				return err
			}
		}
		val, err := s.eval(x.entry)
		if err != nil {
			return err
		}
		x.Value = val
	case *Alias:
		return s.resolveType(x.Type)
	case *Callback:
		return s.resolveType(x.Type)
	case *Function:
		return s.resolveType(x.Type)
	}
	return nil
}

func (s *symbols) resolveStruct(st *Struct) error {
	for _, f := range st.Fields {
		if f.Record != nil {
			if err := s.resolveStruct(f.Record); err != nil {
				return err
			}
		}
		if err := s.resolveType(f.Type); err != nil {
			return err
		}
		if f.bits != nil {
			v, err := s.evalExpr(f.bits, nil)
			if err != nil {
				return err
			}
			if v.Kind != ValueInt || v.IsNegative() || v.Bits > 64 {
				return diag.NewError(diag.ModBadConstant, f.bits.ExprSpan(), fmt.Sprintf("invalid bit-field width for %s.%s", st.Name, f.Name))
			}
			f.Bits = int(v.Bits)
		}
	}
	return nil
}

// resolveType reports the first named type in t that nothing declares.
// Tagged types always resolve: C allows pointers to incomplete records.
func (s *symbols) resolveType(t ast.Type) error {
	var err error
	ast.WalkTypes(t, func(n *ast.NamedType) {
		if err != nil || n.Tag != ast.TagNone || s.knownType(n.Name) {
			return
		}
		err = diag.NewError(diag.ModUnresolvedType, n.Span, fmt.Sprintf("unknown type %s", n.Name))
	})
	if err != nil {
		return err
	}
	if a, ok := t.(*ast.ArrayType); ok && a.Len != nil {
		_, err := s.evalExpr(a.Len, nil)
		return err
	}
	return nil
}

// layoutTypes answers layout queries from the model.
type layoutTypes struct{ m *Model }

func (r layoutTypes) Resolve(t *ast.NamedType) (layout.Def, bool) {
	key := typeKey(t)
	switch it := r.m.syms.types[key].(type) {
	case *Alias:
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: it.Type}, true
	case *Group:
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: it.Base}, true
	case *Callback:
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: &ast.PointerType{Elem: it.Type}}, true
	case *Struct:
		if it.Opaque {
			return layout.Def{Kind: layout.DefOpaque, Name: key}, true
		}
		return structDef(key, it), true
	}
	if t.Tag == ast.TagEnum {
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: ast.Named("int", t.Span)}, true
	}
	if base, ok := fixedWidth[t.Name]; ok {
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: ast.Named(base, t.Span)}, true
	}
	if ext, ok := externalTypes[t.Name]; ok {
		var alias ast.Type = ast.Named(ext, t.Span)
		if ext == "void *" {
			alias = &ast.PointerType{Elem: ast.Named("void", t.Span)}
		}
		return layout.Def{Kind: layout.DefAlias, Name: key, Alias: alias}, true
	}
	return layout.Def{}, false
}

func (r layoutTypes) ArrayLen(e ast.Expr) (int64, bool) { return r.m.EvalInt(e) }

func structDef(name string, st *Struct) layout.Def {
	def := layout.Def{Kind: layout.DefRecord, Name: name, Union: st.Union}
	for _, f := range st.Fields {
		def.Fields = append(def.Fields, layout.Member{Type: f.Type, Bits: f.Bits})
	}
	return def
}

// computeLayouts fills Size and Align of every complete struct.
func (m *Model) computeLayouts() error {
	for _, mod := range m.Modules {
		for _, st := range mod.Structs() {
			if err := m.layoutStruct(st); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) layoutStruct(st *Struct) error {
	if st.Opaque {
		return nil
	}
	for _, f := range st.Fields {
		if f.Record != nil && f.Record.Size == 0 {
			if err := m.layoutStruct(f.Record); err != nil {
				return err
			}
		}
	}
	l, err := m.Layout.RecordLayout(structDef(st.Name, st))
	if err != nil {
		var le *layout.LayoutError
		if errors.As(err, &le) {
			return diag.NewError(diag.ModLayout, st.Span, fmt.Sprintf("cannot lay out %s: %s", st.Name, le.Error()))
		}
		return err
	}
	st.Size, st.Align = l.Size, l.Align
	for i, f := range st.Fields {
		f.Offset = l.FieldOffsets[i]
	}
	return nil
}
