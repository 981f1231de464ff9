package model

import (
	"fmt"
	"math"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
)

// valueEntry is a named constant waiting for, or holding, its value.
type valueEntry struct {
	name string
	expr ast.Expr // expanded; nil for implicit enumerators
	prev *valueEntry
	span source.Span

	state evalState
	val   Value
	err   error
}

type evalState uint8

const (
	evalPending evalState = iota
	evalRunning
	evalDone
)

// cLimits are standard C limit macros that SDL headers may reference.
var cLimits = map[string]Value{
	"SIZE_MAX":   {Kind: ValueInt, Bits: math.MaxUint64, Width: 64},
	"UINT64_MAX": {Kind: ValueInt, Bits: math.MaxUint64, Width: 64},
	"INT64_MAX":  {Kind: ValueInt, Bits: math.MaxInt64, Signed: true, Width: 64},
	"UINT32_MAX": {Kind: ValueInt, Bits: math.MaxUint32, Width: 32},
	"INT32_MAX":  {Kind: ValueInt, Bits: math.MaxInt32, Signed: true, Width: 32},
	"UINT_MAX":   {Kind: ValueInt, Bits: math.MaxUint32, Width: 32},
	"INT_MAX":    {Kind: ValueInt, Bits: math.MaxInt32, Signed: true, Width: 32},
}

type scalar struct {
	width   int
	signed  bool
	float   bool
	boolean bool
}

var builtinScalars = map[string]scalar{
	"char": {width: 8, signed: true}, "signed char": {width: 8, signed: true}, "unsigned char": {width: 8},
	"short": {width: 16, signed: true}, "unsigned short": {width: 16},
	"int": {width: 32, signed: true}, "unsigned int": {width: 32},
	"long": {width: 64, signed: true}, "unsigned long": {width: 64},
	"long long": {width: 64, signed: true}, "unsigned long long": {width: 64},
	"float": {float: true}, "double": {float: true}, "long double": {float: true},
	"bool": {width: 8, boolean: true}, "_Bool": {width: 8, boolean: true},
	"size_t": {width: 64}, "uintptr_t": {width: 64}, "intptr_t": {width: 64, signed: true},
	"wchar_t": {width: 32, signed: true},
	"int8_t":  {width: 8, signed: true}, "uint8_t": {width: 8},
	"int16_t": {width: 16, signed: true}, "uint16_t": {width: 16},
	"int32_t": {width: 32, signed: true}, "uint32_t": {width: 32},
	"int64_t": {width: 64, signed: true}, "uint64_t": {width: 64},
}

func (s *symbols) eval(e *valueEntry) (Value, error) {
	switch e.state {
	case evalDone:
		return e.val, e.err
	case evalRunning:
		return Value{}, diag.NewError(diag.ModMacroRecursion, e.span, fmt.Sprintf("%s is defined in terms of itself", e.name))
	}
	e.state = evalRunning
	switch {
	case e.expr != nil:
		e.val, e.err = s.evalExpr(e.expr, e)
	case e.prev == nil:
		e.val = IntValue(0)
	default:
		prev, err := s.eval(e.prev)
		if err != nil {
			e.err = err
			break
		}
		e.val, e.err = arith(ast.ExprBinaryAdd, prev, IntValue(1), e.span)
	}
	e.state = evalDone
	return e.val, e.err
}

func (s *symbols) evalExpr(x ast.Expr, from *valueEntry) (Value, error) {
	switch e := x.(type) {
	case *ast.Literal:
		return literalValue(e), nil
	case *ast.Ident:
		if ref, ok := s.values[e.Name]; ok {
			return s.eval(ref)
		}
		if v, ok := cLimits[e.Name]; ok {
			return v, nil
		}
		return Value{}, diag.NewError(diag.ModUnresolvedName, e.Span, fmt.Sprintf("unknown name %s%s", e.Name, usedBy(from)))
	case *ast.ParenExpr:
		return s.evalExpr(e.X, from)
	case *ast.UnaryExpr:
		v, err := s.evalExpr(e.X, from)
		if err != nil {
			return v, err
		}
		return unary(e.Op, v, e.Span)
	case *ast.BinaryExpr:
		l, err := s.evalExpr(e.X, from)
		if err != nil {
			return l, err
		}
		r, err := s.evalExpr(e.Y, from)
		if err != nil {
			return r, err
		}
		return arith(e.Op, l, r, e.Span)
	case *ast.CastExpr:
		v, err := s.evalExpr(e.X, from)
		if err != nil {
			return v, err
		}
		sc, ok := s.scalarOf(e.Type, 0)
		if !ok {
			return v, nil
		}
		return convert(v, sc, e.Span)
	case *ast.CallExpr:
		return Value{}, diag.NewError(diag.ModBadConstant, e.Span, fmt.Sprintf("call of %s is not a constant%s", e.Fun.Name, usedBy(from)))
	case *ast.DefinedExpr:
		return Value{}, diag.NewError(diag.ModBadConstant, e.Span, "defined() outside a preprocessor condition")
	case nil:
		return Value{}, diag.NewError(diag.ModBadConstant, spanOf(from), "missing value")
	}
	return Value{}, diag.NewError(diag.ModBadConstant, x.ExprSpan(), "unsupported expression")
}

func usedBy(e *valueEntry) string {
	if e == nil {
		return ""
	}
	return " in the value of " + e.name
}

func spanOf(e *valueEntry) source.Span {
	if e == nil {
		return source.Span{}
	}
	return e.span
}

func literalValue(l *ast.Literal) Value {
	switch l.Kind {
	case ast.LitFloat:
		return Value{Kind: ValueFloat, Float: l.Float}
	case ast.LitString:
		return Value{Kind: ValueString, Str: l.Str}
	case ast.LitChar:
		return intOf(l.Int, 32, true, false)
	}
	hex := strings.HasPrefix(strings.ToLower(l.Digits), "0x")
	n := l.Int
	// the first type that can represent the value, as C picks it
	switch l.Type {
	case ast.PrimUInt:
		if n <= math.MaxUint32 {
			return intOf(n, 32, false, hex)
		}
		return intOf(n, 64, false, hex)
	case ast.PrimLong, ast.PrimLongLong:
		if n <= math.MaxInt64 {
			return intOf(n, 64, true, hex)
		}
		return intOf(n, 64, false, hex)
	case ast.PrimULong, ast.PrimULongLong:
		return intOf(n, 64, false, hex)
	}
	switch {
	case n <= math.MaxInt32:
		return intOf(n, 32, true, hex)
	case hex && n <= math.MaxUint32:
		return intOf(n, 32, false, hex)
	case n <= math.MaxInt64:
		return intOf(n, 64, true, hex)
	}
	return intOf(n, 64, false, hex)
}

// scalarOf resolves a cast target to its arithmetic shape.
func (s *symbols) scalarOf(t ast.Type, depth int) (scalar, bool) {
	if depth > 16 {
		return scalar{}, false
	}
	switch x := t.(type) {
	case *ast.PointerType:
		return scalar{width: 64}, true
	case *ast.NamedType:
		if x.Tag == ast.TagEnum {
			return scalar{width: 32, signed: true}, true
		}
		if x.Tag != ast.TagNone {
			return scalar{}, false
		}
		if sc, ok := builtinScalars[x.Name]; ok {
			return sc, true
		}
		if base, ok := fixedWidth[x.Name]; ok {
			return builtinScalars[base], true
		}
		switch it := s.types[x.Name].(type) {
		case *Alias:
			return s.scalarOf(it.Type, depth+1)
		case *Group:
			return s.scalarOf(it.Base, depth+1)
		case *Callback:
			return scalar{width: 64}, true
		}
		if t, ok := s.typedefs[x.Name]; ok {
			return s.scalarOf(t, depth+1)
		}
	}
	return scalar{}, false
}

func promote(v Value) Value {
	if v.Width < 32 {
		v.Width, v.Signed = 32, true
	}
	return v
}

func unary(op ast.ExprUnaryOp, v Value, sp source.Span) (Value, error) {
	if op == ast.ExprUnaryNot {
		if v.Kind == ValueString {
			return Value{}, badOperand(op.String(), sp)
		}
		return boolValue(v.IsZero()), nil
	}
	switch v.Kind {
	case ValueFloat:
		switch op {
		case ast.ExprUnaryNeg:
			v.Float = -v.Float
			return v, nil
		case ast.ExprUnaryPlus:
			return v, nil
		}
	case ValueInt:
		v = promote(v)
		switch op {
		case ast.ExprUnaryNeg:
			return intOf(-v.Bits, v.Width, v.Signed, v.Hex), nil
		case ast.ExprUnaryPlus:
			return v, nil
		case ast.ExprUnaryBitNot:
			return intOf(^v.Bits, v.Width, v.Signed, v.Hex), nil
		}
	}
	return Value{}, badOperand(op.String(), sp)
}

func badOperand(op string, sp source.Span) error {
	return diag.NewError(diag.ModBadConstant, sp, fmt.Sprintf("invalid operand for %s", op))
}

func toFloat(v Value) float64 {
	switch {
	case v.Kind == ValueFloat:
		return v.Float
	case v.Signed:
		return float64(v.Int64())
	}
	return float64(v.Bits)
}

func arith(op ast.ExprBinaryOp, a, b Value, sp source.Span) (Value, error) {
	if a.Kind == ValueString || b.Kind == ValueString || a.Kind == ValueNone || b.Kind == ValueNone {
		return Value{}, badOperand(op.String(), sp)
	}
	switch op {
	case ast.ExprBinaryLogicalAnd:
		return boolValue(!a.IsZero() && !b.IsZero()), nil
	case ast.ExprBinaryLogicalOr:
		return boolValue(!a.IsZero() || !b.IsZero()), nil
	}
	if a.Kind == ValueFloat || b.Kind == ValueFloat {
		return floatArith(op, toFloat(a), toFloat(b), sp)
	}

	hex := a.Hex || b.Hex
	if op == ast.ExprBinaryShl || op == ast.ExprBinaryShr {
		a = promote(a)
		n := b.Bits
		if b.Signed && b.IsNegative() || n >= uint64(a.Width) {
			return Value{}, diag.NewError(diag.ModBadConstant, sp, fmt.Sprintf("shift count %d out of range", b.Int64()))
		}
		if op == ast.ExprBinaryShl {
			return intOf(a.Bits<<n, a.Width, a.Signed, hex), nil
		}
		if a.Signed {
			return intOf(uint64(a.Int64()>>n), a.Width, true, hex), nil
		}
		return intOf(a.Bits>>n, a.Width, false, hex), nil
	}

	a, b = promote(a), promote(b)
	width, signed := a.Width, a.Signed
	switch {
	case a.Width == b.Width:
		signed = a.Signed && b.Signed
	case b.Width > a.Width:
		width, signed = b.Width, b.Signed
	}
	x := normalize(a.Bits, width, signed)
	y := normalize(b.Bits, width, signed)

	switch op {
	case ast.ExprBinaryAdd:
		return intOf(x+y, width, signed, hex), nil
	case ast.ExprBinarySub:
		return intOf(x-y, width, signed, hex), nil
	case ast.ExprBinaryMul:
		return intOf(x*y, width, signed, hex), nil
	case ast.ExprBinaryDiv, ast.ExprBinaryMod:
		if y == 0 {
			return Value{}, diag.NewError(diag.ModBadConstant, sp, "division by zero")
		}
		var r uint64
		switch {
		case signed && op == ast.ExprBinaryDiv:
			r = uint64(int64(x) / int64(y))
		case signed:
			r = uint64(int64(x) % int64(y))
		case op == ast.ExprBinaryDiv:
			r = x / y
		default:
			r = x % y
		}
		return intOf(r, width, signed, hex), nil
	case ast.ExprBinaryBitAnd:
		return intOf(x&y, width, signed, hex), nil
	case ast.ExprBinaryBitOr:
		return intOf(x|y, width, signed, hex), nil
	case ast.ExprBinaryBitXor:
		return intOf(x^y, width, signed, hex), nil
	}

	var less, equal bool
	if signed {
		less, equal = int64(x) < int64(y), x == y
	} else {
		less, equal = x < y, x == y
	}
	return compare(op, less, equal, sp)
}

func floatArith(op ast.ExprBinaryOp, x, y float64, sp source.Span) (Value, error) {
	switch op {
	case ast.ExprBinaryAdd:
		return Value{Kind: ValueFloat, Float: x + y}, nil
	case ast.ExprBinarySub:
		return Value{Kind: ValueFloat, Float: x - y}, nil
	case ast.ExprBinaryMul:
		return Value{Kind: ValueFloat, Float: x * y}, nil
	case ast.ExprBinaryDiv:
		if y == 0 {
			return Value{}, diag.NewError(diag.ModBadConstant, sp, "division by zero")
		}
		return Value{Kind: ValueFloat, Float: x / y}, nil
	}
	return compare(op, x < y, x == y, sp)
}

func compare(op ast.ExprBinaryOp, less, equal bool, sp source.Span) (Value, error) {
	switch op {
	case ast.ExprBinaryEq:
		return boolValue(equal), nil
	case ast.ExprBinaryNotEq:
		return boolValue(!equal), nil
	case ast.ExprBinaryLess:
		return boolValue(less), nil
	case ast.ExprBinaryLessEq:
		return boolValue(less || equal), nil
	case ast.ExprBinaryGreater:
		return boolValue(!less && !equal), nil
	case ast.ExprBinaryGreaterEq:
		return boolValue(!less), nil
	}
	return Value{}, badOperand(op.String(), sp)
}

// convert applies a C cast.
func convert(v Value, sc scalar, sp source.Span) (Value, error) {
	if v.Kind == ValueString || v.Kind == ValueNone {
		return Value{}, diag.NewError(diag.ModBadConstant, sp, "cast of a non-arithmetic value")
	}
	switch {
	case sc.float:
		return Value{Kind: ValueFloat, Float: toFloat(v)}, nil
	case sc.boolean:
		b := boolValue(!v.IsZero())
		b.Width, b.Signed = 8, false
		return b, nil
	case v.Kind == ValueFloat:
		return intOf(uint64(int64(v.Float)), sc.width, sc.signed, false), nil
	}
	return intOf(v.Bits, sc.width, sc.signed, v.Hex), nil
}
