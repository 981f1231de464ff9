package ast

import (
	"sdl3gen/internal/source"
)

// Expr is a constant expression. The set of implementations is closed:
// *Ident, *Literal, *ParenExpr, *UnaryExpr, *BinaryExpr, *CastExpr,
// *CallExpr and *DefinedExpr. Consumers switch over all of them.
type Expr interface {
	exprNode()
	ExprSpan() source.Span
}

func (*Ident) exprNode()       {}
func (*Literal) exprNode()     {}
func (*ParenExpr) exprNode()   {}
func (*UnaryExpr) exprNode()   {}
func (*BinaryExpr) exprNode()  {}
func (*CastExpr) exprNode()    {}
func (*CallExpr) exprNode()    {}
func (*DefinedExpr) exprNode() {}

func (e *Ident) ExprSpan() source.Span       { return e.Span }
func (e *Literal) ExprSpan() source.Span     { return e.Span }
func (e *ParenExpr) ExprSpan() source.Span   { return e.Span }
func (e *UnaryExpr) ExprSpan() source.Span   { return e.Span }
func (e *BinaryExpr) ExprSpan() source.Span  { return e.Span }
func (e *CastExpr) ExprSpan() source.Span    { return e.Span }
func (e *CallExpr) ExprSpan() source.Span    { return e.Span }
func (e *DefinedExpr) ExprSpan() source.Span { return e.Span }

type ParenExpr struct {
	X    Expr
	Span source.Span
}

type ExprUnaryOp uint8

const (
	ExprUnaryNeg    ExprUnaryOp = iota // -x
	ExprUnaryPlus                      // +x
	ExprUnaryNot                       // !x
	ExprUnaryBitNot                    // ~x
)

type UnaryExpr struct {
	Op   ExprUnaryOp
	X    Expr
	Span source.Span
}

type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	ExprBinaryShl
	ExprBinaryShr
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
)

var binaryOpText = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryMod:        "%",
	ExprBinaryShl:        "<<",
	ExprBinaryShr:        ">>",
	ExprBinaryBitAnd:     "&",
	ExprBinaryBitOr:      "|",
	ExprBinaryBitXor:     "^",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryBitNot:
		return "~"
	}
	return "?"
}

type BinaryExpr struct {
	Op   ExprBinaryOp
	X, Y Expr
	Span source.Span
}

// CastExpr is (T)x or SDL_static_cast(T, x).
type CastExpr struct {
	Type Type
	X    Expr
	Span source.Span
}

// CallExpr is a function-like macro invocation.
type CallExpr struct {
	Fun  *Ident
	Args CallArgs
	Span source.Span
}

// DefinedExpr is the preprocessor operator defined(X).
type DefinedExpr struct {
	Name *Ident
	Span source.Span
}

// CallArgs is a parenthesised, comma separated argument list. "()" is valid
// and yields no arguments.
type CallArgs struct {
	Args []Expr
	Span source.Span
}

// Len returns the number of arguments.
func (a CallArgs) Len() int { return len(a.Args) }

// CastTo wraps x in a cast to t. An existing top-level cast (possibly
// parenthesised) is replaced, so applying the same cast twice is a no-op.
// Binary operands are parenthesised.
func CastTo(t Type, x Expr) Expr {
	inner := StripCast(x)
	if b, ok := inner.(*BinaryExpr); ok {
		inner = &ParenExpr{X: b, Span: b.Span}
	}
	return &CastExpr{Type: t, X: inner, Span: x.ExprSpan()}
}

// StripCast removes top-level casts, looking through one level of parentheses.
func StripCast(x Expr) Expr {
	switch e := x.(type) {
	case *CastExpr:
		return StripCast(e.X)
	case *ParenExpr:
		if c, ok := e.X.(*CastExpr); ok {
			return StripCast(c.X)
		}
	}
	return x
}

// Idents calls fn for every identifier referenced by e, in source order.
// Cast target types and defined() operands are not visited.
func Idents(e Expr, fn func(*Ident)) {
	switch x := e.(type) {
	case nil:
	case *Ident:
		fn(x)
	case *Literal:
	case *ParenExpr:
		Idents(x.X, fn)
	case *UnaryExpr:
		Idents(x.X, fn)
	case *BinaryExpr:
		Idents(x.X, fn)
		Idents(x.Y, fn)
	case *CastExpr:
		Idents(x.X, fn)
	case *CallExpr:
		fn(x.Fun)
		for _, a := range x.Args.Args {
			Idents(a, fn)
		}
	case *DefinedExpr:
	default:
		panic("ast: unknown expression node")
	}
}
