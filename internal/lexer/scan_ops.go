package lexer

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// Greedy: three-byte operators first, then two-byte, then single bytes.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	switch {
	case lx.try3('.', '.', '.'):
		return emit(token.Ellipsis)
	case lx.try3('<', '<', '='):
		return emit(token.ShlAssign)
	case lx.try3('>', '>', '='):
		return emit(token.ShrAssign)
	case lx.try2('#', '#'):
		return emit(token.HashHash)
	case lx.try2('-', '>'):
		return emit(token.Arrow)
	case lx.try2('+', '+'):
		return emit(token.PlusPlus)
	case lx.try2('-', '-'):
		return emit(token.MinusMinus)
	case lx.try2('&', '&'):
		return emit(token.AndAnd)
	case lx.try2('|', '|'):
		return emit(token.OrOr)
	case lx.try2('=', '='):
		return emit(token.EqEq)
	case lx.try2('!', '='):
		return emit(token.BangEq)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	case lx.try2('<', '<'):
		return emit(token.Shl)
	case lx.try2('>', '>'):
		return emit(token.Shr)
	case lx.try2('+', '='):
		return emit(token.PlusAssign)
	case lx.try2('-', '='):
		return emit(token.MinusAssign)
	case lx.try2('*', '='):
		return emit(token.StarAssign)
	case lx.try2('/', '='):
		return emit(token.SlashAssign)
	case lx.try2('%', '='):
		return emit(token.PercentAssign)
	case lx.try2('&', '='):
		return emit(token.AmpAssign)
	case lx.try2('|', '='):
		return emit(token.PipeAssign)
	case lx.try2('^', '='):
		return emit(token.CaretAssign)
	}

	ch := lx.cursor.Bump()
	switch ch {
	case '#':
		return emit(token.Hash)
	case '+':
		return emit(token.Plus)
	case '-':
		return emit(token.Minus)
	case '*':
		return emit(token.Star)
	case '/':
		return emit(token.Slash)
	case '%':
		return emit(token.Percent)
	case '=':
		return emit(token.Assign)
	case '!':
		return emit(token.Bang)
	case '<':
		return emit(token.Lt)
	case '>':
		return emit(token.Gt)
	case '&':
		return emit(token.Amp)
	case '|':
		return emit(token.Pipe)
	case '^':
		return emit(token.Caret)
	case '~':
		return emit(token.Tilde)
	case '?':
		return emit(token.Question)
	case ':':
		return emit(token.Colon)
	case ';':
		return emit(token.Semicolon)
	case ',':
		return emit(token.Comma)
	case '.':
		return emit(token.Dot)
	case '(':
		return emit(token.LParen)
	case ')':
		return emit(token.RParen)
	case '{':
		return emit(token.LBrace)
	case '}':
		return emit(token.RBrace)
	case '[':
		return emit(token.LBracket)
	case ']':
		return emit(token.RBracket)
	case '\\':
		return emit(token.Backslash)
	default:
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
}
