package parser

import (
	"fmt"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

// hard builds a hard parse failure. The returned error is a diag.Diagnostic.
func hard(code diag.Code, sp source.Span, format string, args ...any) error {
	return diag.NewError(code, sp, fmt.Sprintf(format, args...))
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return fmt.Sprintf("identifier %q", tok.Text)
	}
	if tok.Text != "" {
		return fmt.Sprintf("%q", tok.Text)
	}
	return fmt.Sprintf("%q", tok.Kind.String())
}

// expect consumes a token of kind k or fails hard with code.
func expect(in Input, k token.Kind, code diag.Code, what string) (Input, token.Token, error) {
	tok := in.Peek()
	if tok.Kind != k {
		return in, tok, hard(code, tok.Span, "expected %s, found %s", what, describe(tok))
	}
	return in.Advance(), tok, nil
}
