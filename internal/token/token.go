package token

import (
	"sdl3gen/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, char or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, StringLit:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a C keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwTypedef && t.Kind <= KwSizeof
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= Backslash
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// StartsLine reports whether a newline precedes the token, or it opens the file.
func (t Token) StartsLine() bool {
	if t.Span.Start == 0 {
		return true
	}
	for _, tv := range t.Leading {
		if tv.Kind == TriviaNewline {
			return true
		}
	}
	return false
}
