package parser

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/token"
)

// Binary operator precedence, lowest first. Matches C.
const (
	precNone = iota
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

type binaryOpInfo struct {
	op   ast.ExprBinaryOp
	prec int
}

var binaryOps = map[token.Kind]binaryOpInfo{
	token.OrOr:    {ast.ExprBinaryLogicalOr, precLogicalOr},
	token.AndAnd:  {ast.ExprBinaryLogicalAnd, precLogicalAnd},
	token.Pipe:    {ast.ExprBinaryBitOr, precBitOr},
	token.Caret:   {ast.ExprBinaryBitXor, precBitXor},
	token.Amp:     {ast.ExprBinaryBitAnd, precBitAnd},
	token.EqEq:    {ast.ExprBinaryEq, precEquality},
	token.BangEq:  {ast.ExprBinaryNotEq, precEquality},
	token.Lt:      {ast.ExprBinaryLess, precRelational},
	token.LtEq:    {ast.ExprBinaryLessEq, precRelational},
	token.Gt:      {ast.ExprBinaryGreater, precRelational},
	token.GtEq:    {ast.ExprBinaryGreaterEq, precRelational},
	token.Shl:     {ast.ExprBinaryShl, precShift},
	token.Shr:     {ast.ExprBinaryShr, precShift},
	token.Plus:    {ast.ExprBinaryAdd, precAdditive},
	token.Minus:   {ast.ExprBinarySub, precAdditive},
	token.Star:    {ast.ExprBinaryMul, precMultiplicative},
	token.Slash:   {ast.ExprBinaryDiv, precMultiplicative},
	token.Percent: {ast.ExprBinaryMod, precMultiplicative},
}

func binaryOp(k token.Kind) (binaryOpInfo, bool) {
	info, ok := binaryOps[k]
	return info, ok
}

func unaryOp(k token.Kind) (ast.ExprUnaryOp, bool) {
	switch k {
	case token.Minus:
		return ast.ExprUnaryNeg, true
	case token.Plus:
		return ast.ExprUnaryPlus, true
	case token.Bang:
		return ast.ExprUnaryNot, true
	case token.Tilde:
		return ast.ExprUnaryBitNot, true
	}
	return 0, false
}
