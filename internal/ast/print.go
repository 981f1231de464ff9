package ast

import (
	"strings"
)

// ExprString renders e as C source.
func ExprString(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
	case *Ident:
		b.WriteString(x.Name)
	case *Literal:
		b.WriteString(x.Raw)
	case *ParenExpr:
		b.WriteByte('(')
		writeExpr(b, x.X)
		b.WriteByte(')')
	case *UnaryExpr:
		b.WriteString(x.Op.String())
		writeExpr(b, x.X)
	case *BinaryExpr:
		writeExpr(b, x.X)
		b.WriteByte(' ')
		b.WriteString(x.Op.String())
		b.WriteByte(' ')
		writeExpr(b, x.Y)
	case *CastExpr:
		b.WriteByte('(')
		b.WriteString(x.Type.String())
		b.WriteByte(')')
		writeExpr(b, x.X)
	case *CallExpr:
		b.WriteString(x.Fun.Name)
		writeCallArgs(b, x.Args)
	case *DefinedExpr:
		b.WriteString("defined(")
		b.WriteString(x.Name.Name)
		b.WriteByte(')')
	default:
		panic("ast: unknown expression node")
	}
}

func writeCallArgs(b *strings.Builder, args CallArgs) {
	b.WriteByte('(')
	for i, a := range args.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, a)
	}
	b.WriteByte(')')
}

// CallArgsString renders an argument list as "(a, b)".
func CallArgsString(args CallArgs) string {
	var b strings.Builder
	writeCallArgs(&b, args)
	return b.String()
}
