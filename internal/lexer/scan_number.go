package lexer

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// scanNumber accepts C integer and floating literals:
// 123, 0777, 0x7F, 0b101, 1.0, .5, 1e-3, 0x1p-2, plus any trailing suffix
// letters (u, l, f, ...). Suffix validity is checked by the parser, which
// knows the literal grammar; the lexer only keeps the lexeme together.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.eatDigits(isDec)
		lx.scanExponent('e', 'E')
		return lx.finishNumber(start, kind)
	}

	if lx.cursor.Peek() == '0' {
		lx.cursor.Bump()
		switch lx.cursor.Peek() {
		case 'x', 'X':
			lx.cursor.Bump()
			digits := lx.eatDigits(isHex)
			if lx.cursor.Peek() == '.' {
				lx.cursor.Bump()
				kind = token.FloatLit
				digits += lx.eatDigits(isHex)
			}
			if digits == 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadNumber, sp, "expected hex digit after 0x")
				return lx.finishInvalid(start)
			}
			if lx.scanExponent('p', 'P') {
				kind = token.FloatLit
			}
			return lx.finishNumber(start, kind)
		case 'b', 'B':
			lx.cursor.Bump()
			if lx.eatDigits(func(b byte) bool { return b == '0' || b == '1' }) == 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadNumber, sp, "expected binary digit after 0b")
				return lx.finishInvalid(start)
			}
			return lx.finishNumber(start, kind)
		}
	}

	lx.eatDigits(isDec)
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.eatDigits(isDec)
	}
	if lx.scanExponent('e', 'E') {
		kind = token.FloatLit
	}
	return lx.finishNumber(start, kind)
}

func (lx *Lexer) eatDigits(ok func(byte) bool) int {
	n := 0
	for ok(lx.cursor.Peek()) {
		lx.cursor.Bump()
		n++
	}
	return n
}

// scanExponent consumes [eE][+-]?digits (or the p form for hex floats).
// A lone 'e' followed by a non-digit is left for the suffix scan, which
// turns it into an invalid suffix instead of silently splitting tokens.
func (lx *Lexer) scanExponent(lower, upper byte) bool {
	b := lx.cursor.Peek()
	if b != lower && b != upper {
		return false
	}
	m := lx.cursor.Mark()
	lx.cursor.Bump()
	if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
	}
	if !isDec(lx.cursor.Peek()) {
		lx.cursor.Reset(m)
		return false
	}
	lx.eatDigits(isDec)
	return true
}

func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) finishInvalid(start Mark) token.Token {
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
