package parser

import (
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/token"
)

const categoryPrefix = "# Category"

// leadingDoc returns the /** */ block directly above tok. A blank line
// between the comment and tok detaches it, and category blocks belong to
// the file.
func leadingDoc(tok token.Token) *ast.Doc {
	var doc *token.Trivia
	newlines := 0
	for i := range tok.Leading {
		tv := &tok.Leading[i]
		switch tv.Kind {
		case token.TriviaDocBlock:
			doc, newlines = tv, 0
		case token.TriviaNewline:
			newlines += strings.Count(tv.Text, "\n")
		}
	}
	if doc == nil || newlines > 1 {
		return nil
	}
	body := doc.DocBody()
	if strings.HasPrefix(body, categoryPrefix) {
		return nil
	}
	return newDoc(*doc, body)
}

// trailingDoc returns a /**< */ comment that sits on the same line before tok.
func trailingDoc(tok token.Token) *ast.Doc {
	for _, tv := range tok.Leading {
		switch tv.Kind {
		case token.TriviaNewline:
			return nil
		case token.TriviaDocTrailing:
			return newDoc(tv, tv.DocBody())
		}
	}
	return nil
}

// moduleDoc finds the "# CategoryX" block describing the whole header.
func moduleDoc(toks []token.Token) *ast.Doc {
	for _, tok := range toks {
		for _, tv := range tok.Leading {
			if tv.Kind != token.TriviaDocBlock {
				continue
			}
			body := tv.DocBody()
			if !strings.HasPrefix(body, categoryPrefix) {
				continue
			}
			if nl := strings.IndexByte(body, '\n'); nl >= 0 {
				body = strings.TrimSpace(body[nl+1:])
			} else {
				body = ""
			}
			return newDoc(tv, body)
		}
	}
	return nil
}

func newDoc(tv token.Trivia, body string) *ast.Doc {
	return &ast.Doc{Text: body, Since: parseSince(body), Span: tv.Span}
}

// parseSince extracts the version from a "\since ... SDL 3.2.0." line.
func parseSince(text string) *ast.Version {
	idx := strings.Index(text, `\since`)
	if idx < 0 {
		return nil
	}
	line := text[idx:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	var found *ast.Version
	for _, field := range strings.Fields(line) {
		if v, ok := ast.ParseVersion(strings.TrimRight(field, ".,;")); ok {
			found = &v
		}
	}
	return found
}
