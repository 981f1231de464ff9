package lexer

import (
	"sdl3gen/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword scans an identifier and classifies C keywords.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Invalid, Span: sp}
	}
	if r < utf8RuneSelf {
		if !isIdentStartByte(byte(r)) {
			return lx.scanOperatorOrPunct()
		}
		lx.cursor.Bump()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else {
		if !isIdentStartRune(r) {
			return lx.scanOperatorOrPunct()
		}
		lx.bumpRune()
		for {
			r2, sz2 := lx.peekRune()
			if sz2 == 0 || !isIdentContinueRune(r2) {
				break
			}
			lx.bumpRune()
		}
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

// atPrefixedLiteral detects L"..", u".." , U"..", u8".." and L'x'.
func (lx *Lexer) atPrefixedLiteral() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok {
		return false
	}
	if b1 == '"' || b1 == '\'' {
		return true
	}
	if b0 == 'u' && b1 == '8' {
		_, _, b2, ok3 := lx.cursor.Peek3()
		return ok3 && (b2 == '"' || b2 == '\'')
	}
	return false
}

func (lx *Lexer) scanPrefixedLiteral() token.Token {
	start := lx.cursor.Mark()
	for lx.cursor.Peek() != '"' && lx.cursor.Peek() != '\'' {
		lx.cursor.Bump()
	}
	var tok token.Token
	if lx.cursor.Peek() == '"' {
		tok = lx.scanString()
	} else {
		tok = lx.scanChar()
	}
	tok.Span.Start = uint32(start)
	tok.Text = string(lx.file.Content[tok.Span.Start:tok.Span.End])
	return tok
}
