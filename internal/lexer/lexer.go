package lexer

import (
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // one-token lookahead buffer
	hold   []token.Trivia // leading trivia collected so far

	// directive state: lastHashLine is set right after a line-starting '#',
	// rawLine makes the next token swallow the rest of the line.
	lastHashLine bool
	rawLine      bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// All lexes the whole file. The returned slice always ends with EOF.
func All(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next returns the next significant token with its Leading trivia attached.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		// trailing trivia stays on EOF so doc comments at file end are not lost
		tok := token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.hold,
		}
		lx.hold = nil
		return tok
	}

	startsLine := lx.cursor.Off == 0 || containsNewline(lx.hold)
	if lx.rawLine && !startsLine {
		lx.rawLine = false
		tok := lx.scanRawLine()
		tok.Leading = lx.hold
		lx.hold = nil
		return tok
	}
	lx.rawLine = false

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case (ch == 'L' || ch == 'u' || ch == 'U') && lx.atPrefixedLiteral():
		tok = lx.scanPrefixedLiteral()

	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && lx.isNumberAfterDot():
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString()

	case ch == '\'':
		tok = lx.scanChar()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	// "#error" and "#warning" carry free text that is not C.
	if lx.lastHashLine && tok.Kind == token.Ident && (tok.Text == "error" || tok.Text == "warning") {
		lx.rawLine = true
	}
	lx.lastHashLine = tok.Kind == token.Hash && startsLine

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) scanRawLine() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '\\' && b1 == '\n' {
			lx.cursor.Bump()
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.RawText, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func containsNewline(trivia []token.Trivia) bool {
	for _, tv := range trivia {
		if tv.Kind == token.TriviaNewline {
			return true
		}
	}
	return false
}
