package lexer

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// collectLeadingTrivia gathers the trivia run before the next significant token.
//   - ' ', '\t', '\f', '\v' and backslash-newline continuations coalesce into TriviaSpace
//   - consecutive '\n' coalesce into one TriviaNewline
//   - //... up to '\n' -> TriviaLineComment
//   - /* ... */ -> TriviaBlockComment, /** ... */ -> TriviaDocBlock, /**< ... */ -> TriviaDocTrailing
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isSpaceByte(b) || lx.atContinuation() {
			for {
				if isSpaceByte(lx.cursor.Peek()) {
					lx.cursor.Bump()
					continue
				}
				if lx.atContinuation() {
					lx.cursor.Bump()
					if lx.cursor.Peek() == '\r' {
						lx.cursor.Bump()
					}
					lx.cursor.Bump()
					continue
				}
				break
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '/' && lx.scanCommentIntoHold() {
			continue
		}

		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

// atContinuation reports a backslash directly followed by a line break.
func (lx *Lexer) atContinuation() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '\\' {
		return false
	}
	if b1 == '\n' {
		return true
	}
	_, _, b2, ok3 := lx.cursor.Peek3()
	return ok3 && b1 == '\r' && b2 == '\n'
}

func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}
	switch b1 {
	case '/':
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			if lx.atContinuation() {
				lx.cursor.Bump()
			}
			lx.cursor.Bump()
		}
		lx.pushTrivia(token.TriviaLineComment, start)
		return true

	case '*':
		lx.cursor.Bump()
		lx.cursor.Bump()
		kind := token.TriviaBlockComment
		// "/**/" is an empty plain comment, "/**<" a trailing doc
		if d0, d1, ok := lx.cursor.Peek2(); ok && d0 == '*' && d1 != '/' {
			kind = token.TriviaDocBlock
			if d1 == '<' {
				kind = token.TriviaDocTrailing
			}
		}
		closed := false
		for !lx.cursor.EOF() {
			if c0, c1, ok := lx.cursor.Peek2(); ok && c0 == '*' && c1 == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				closed = true
				break
			}
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		if !closed {
			lx.errLex(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
		}
		lx.pushTrivia(kind, start)
		return true

	default:
		return false
	}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\f' || b == '\v' || b == '\r'
}
