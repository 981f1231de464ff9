package lexer

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// scanString scans "..." with C escapes. Escapes are kept verbatim in Text;
// decoding happens in the parser.
func (lx *Lexer) scanString() token.Token {
	return lx.scanQuoted('"', token.StringLit, diag.LexUnterminatedString, "string")
}

// scanChar scans a character constant such as 'a' or '\x1b'.
func (lx *Lexer) scanChar() token.Token {
	return lx.scanQuoted('\'', token.CharLit, diag.LexUnterminatedChar, "character")
}

func (lx *Lexer) scanQuoted(quote byte, kind token.Kind, code diag.Code, what string) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == quote {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(code, sp, "newline in "+what+" literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(code, sp, "unterminated "+what+" literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
