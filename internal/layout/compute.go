package layout

import (
	"fortio.org/safecast"

	"sdl3gen/internal/ast"
)

func (e *LayoutEngine) computeNamed(t *ast.NamedType, key string, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Types == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: key}
	}
	def, ok := e.Types.Resolve(t)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: key}
	}
	switch def.Kind {
	case DefAlias:
		return e.layoutOf(def.Alias, state)
	case DefRecord:
		return e.recordLayout(def, state)
	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: key}
	}
}

// scalarLayout covers the C builtin and <stdint.h> types.
func (e *LayoutEngine) scalarLayout(name string) (TypeLayout, bool) {
	switch name {
	case "char", "signed char", "unsigned char", "bool", "_Bool", "int8_t", "uint8_t":
		return scalarLayoutBytes(1), true
	case "short", "unsigned short", "int16_t", "uint16_t":
		return scalarLayoutBytes(2), true
	case "int", "unsigned int", "float", "int32_t", "uint32_t":
		return scalarLayoutBytes(4), true
	case "long", "unsigned long":
		return scalarLayoutBytes(e.Target.LongSize), true
	case "long long", "unsigned long long", "double", "int64_t", "uint64_t":
		return scalarLayoutBytes(8), true
	case "long double":
		return scalarLayoutBytes(16), true
	case "size_t", "uintptr_t", "intptr_t":
		return e.ptrLayout(), true
	case "wchar_t":
		return scalarLayoutBytes(e.Target.WCharSize), true
	}
	return TypeLayout{}, false
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayLayout(t *ast.ArrayType, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(t.Elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	if t.Len == nil {
		// flexible array member
		return TypeLayout{Size: 0, Align: elemAlign}, nil
	}
	name := t.String()
	if e.Types == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: name}
	}
	length, ok := e.Types.ArrayLen(t.Len)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: name}
	}
	if length < 0 {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNegativeLength, Type: name, Value: length}
	}
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: name}
	}
	stride := roundUp(elemLayout.Size, elemAlign)
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

func (e *LayoutEngine) recordLayout(def Def, state *layoutState) (TypeLayout, *LayoutError) {
	fields := def.Fields
	if len(fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(fields))

	if def.Union {
		size, align := 0, 1
		for i := range fields {
			fl, err := e.layoutOf(fields[i].Type, state)
			if err != nil {
				return TypeLayout{Size: 0, Align: 1}, err
			}
			size = max(size, fl.Size)
			align = max(align, fl.Align)
		}
		return TypeLayout{
			Size:         roundUp(size, align),
			Align:        align,
			FieldOffsets: offsets,
		}, nil
	}

	bits := 0 // running offset in bits
	align := 1
	for i := range fields {
		fl, err := e.layoutOf(fields[i].Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fAlign := max(fl.Align, 1)
		align = max(align, fAlign)
		if w := fields[i].Bits; w > 0 {
			unit := fl.Size * 8
			if unit == 0 {
				continue
			}
			if bits/unit != (bits+w-1)/unit {
				bits = roundUp(bits, unit)
			}
			offsets[i] = bits / unit * fl.Size
			bits += w
			continue
		}
		off := roundUp((bits+7)/8, fAlign)
		offsets[i] = off
		bits = (off + fl.Size) * 8
	}
	return TypeLayout{
		Size:         roundUp((bits+7)/8, align),
		Align:        align,
		FieldOffsets: offsets,
	}, nil
}
