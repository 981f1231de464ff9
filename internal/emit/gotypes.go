package emit

import (
	"fmt"
	"strconv"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/model"
)

// position selects the Go spelling of a C type.
type position uint8

const (
	posField position = iota
	posParam
	posResult
)

var builtinGo = map[string]string{
	"char": "byte", "signed char": "int8", "unsigned char": "uint8",
	"short": "int16", "unsigned short": "uint16",
	"int": "int32", "unsigned int": "uint32",
	"long": "int64", "unsigned long": "uint64",
	"long long": "int64", "unsigned long long": "uint64",
	"float": "float32", "double": "float64",
	"bool": "bool", "_Bool": "bool",
	"size_t": "uintptr", "uintptr_t": "uintptr", "intptr_t": "int",
	"wchar_t": "int32",
	"int8_t": "int8", "uint8_t": "uint8",
	"int16_t": "int16", "uint16_t": "uint16",
	"int32_t": "int32", "uint32_t": "uint32",
	"int64_t": "int64", "uint64_t": "uint64",
}

// numericGo are the Go types a typed constant may carry.
var numericGo = map[string]bool{
	"byte": true, "int8": true, "uint8": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "int64": true, "uint64": true, "int": true,
	"uintptr": true, "float32": true, "float64": true,
}

// typeMapper spells model types in Go.
type typeMapper struct {
	m     *model.Model
	names map[model.Item]string // Go names of type items
	// unsafe is set once a mapped type needs the unsafe package.
	unsafe bool
}

func unsupported(t ast.Type, format string, args ...any) error {
	return diag.NewError(diag.EmtUnsupportedType, t.TypeSpan(), fmt.Sprintf(format, args...))
}

func (tm *typeMapper) goType(t ast.Type, pos position) (string, error) {
	switch x := t.(type) {
	case *ast.NamedType:
		return tm.named(x)
	case *ast.PointerType:
		return tm.pointer(x, pos)
	case *ast.ArrayType:
		if pos != posField {
			elem, err := tm.goType(x.Elem, posField)
			if err != nil {
				return "", err
			}
			return "*" + elem, nil
		}
		elem, err := tm.goType(x.Elem, posField)
		if err != nil {
			return "", err
		}
		n := int64(0)
		if x.Len != nil {
			v, ok := tm.m.EvalInt(x.Len)
			if !ok || v < 0 {
				return "", unsupported(t, "array length %s is not a constant", ast.ExprString(x.Len))
			}
			n = v
		}
		return "[" + strconv.FormatInt(n, 10) + "]" + elem, nil
	case *ast.FuncType:
		return "uintptr", nil
	}
	return "", unsupported(t, "cannot map %s", t)
}

func (tm *typeMapper) named(n *ast.NamedType) (string, error) {
	if n.Tag == ast.TagNone {
		if g, ok := builtinGo[n.Name]; ok {
			return g, nil
		}
		if base, ok := model.FixedWidth(n.Name); ok {
			return builtinGo[base], nil
		}
	}
	if it, ok := tm.m.LookupType(n); ok {
		if name, ok := tm.names[it]; ok {
			return name, nil
		}
		if a, ok := it.(*model.Alias); ok {
			return tm.goType(a.Type, posField)
		}
	}
	switch {
	case n.Tag == ast.TagEnum:
		return "int32", nil
	case n.Tag != ast.TagNone:
		// never defined: only usable behind a pointer
		return "", unsupported(n, "%s is incomplete", n)
	}
	if ext, ok := model.External(n.Name); ok {
		if ext == "void *" {
			return "uintptr", nil
		}
		return builtinGo[ext], nil
	}
	return "", unsupported(n, "no Go type for %s", n)
}

func (tm *typeMapper) pointer(p *ast.PointerType, pos position) (string, error) {
	switch elem := p.Elem.(type) {
	case *ast.FuncType:
		return "uintptr", nil
	case *ast.NamedType:
		switch {
		case elem.Tag == ast.TagNone && elem.Name == "void":
			tm.unsafe = true
			return "unsafe.Pointer", nil
		case elem.Tag == ast.TagNone && elem.Name == "char" && elem.Const && pos != posField:
			return "string", nil
		case tm.opaqueTarget(elem):
			tm.unsafe = true
			return "unsafe.Pointer", nil
		}
	}
	inner, err := tm.goType(p.Elem, posField)
	if err != nil {
		return "", err
	}
	return "*" + inner, nil
}

// opaqueTarget reports pointees the bindings cannot name: platform types
// and records that no header defines.
func (tm *typeMapper) opaqueTarget(n *ast.NamedType) bool {
	if n.Tag == ast.TagNone {
		if _, ok := model.External(n.Name); ok {
			return true
		}
	}
	if it, ok := tm.m.LookupType(n); ok {
		_, named := tm.names[it]
		if named {
			return false
		}
		_, alias := it.(*model.Alias)
		return !alias
	}
	return n.Tag != ast.TagNone && n.Tag != ast.TagEnum
}

// isVoid reports a void result.
func isVoid(t ast.Type) bool { return t == nil || ast.IsVoid(t) }

// skipParam reports parameters purego cannot pass.
func skipParam(p *ast.Param) bool {
	n, ok := p.Type.(*ast.NamedType)
	return ok && n.Name == "va_list"
}
