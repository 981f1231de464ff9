package parser

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// Ident parses a single C identifier. Keywords are not identifiers.
func Ident(in Input) (Input, *ast.Ident, error) {
	tok := in.Peek()
	if tok.Kind != token.Ident {
		return in, nil, nil
	}
	return in.Advance(), ast.NewIdent(tok.Text, tok.Span), nil
}

// Expr parses the minimal expression: an identifier, else a literal.
func Expr(in Input) (Input, ast.Expr, error) {
	if rest, id, _ := Ident(in); id != nil {
		return rest, id, nil
	}
	rest, lit, err := Literal(in)
	if lit == nil {
		return in, nil, err
	}
	return rest, lit, nil
}

// CallArgs parses "(a, b, ...)". Each argument is a full constant
// expression. Once "(" is consumed, a malformed list is a hard error.
func CallArgs(in Input) (Input, *ast.CallArgs, error) {
	if !in.At(token.LParen) {
		return in, nil, nil
	}
	start := in
	open := in.Peek()
	in = in.Advance()
	args := &ast.CallArgs{}
	if in.At(token.RParen) {
		in = in.Advance()
		args.Span = in.SpanSince(start)
		return in, args, nil
	}
	for {
		rest, arg, err := ValueExpr(in)
		if err != nil {
			return start, nil, err
		}
		if arg == nil {
			tok := in.Peek()
			if tok.Kind == token.EOF {
				return start, nil, hard(diag.SynUnclosedParen, open.Span, "unclosed argument list")
			}
			return start, nil, hard(diag.SynExpectExpression, tok.Span, "expected argument, found %s", describe(tok))
		}
		args.Args = append(args.Args, arg)
		in = rest
		switch in.Peek().Kind {
		case token.Comma:
			in = in.Advance()
			continue
		case token.RParen:
			in = in.Advance()
			args.Span = in.SpanSince(start)
			return in, args, nil
		case token.EOF:
			return start, nil, hard(diag.SynUnclosedParen, open.Span, "unclosed argument list")
		default:
			tok := in.Peek()
			return start, nil, hard(diag.SynUnexpectedToken, tok.Span, "expected ',' or ')' in argument list, found %s", describe(tok))
		}
	}
}

type attrArity uint8

const (
	attrNoArgs attrArity = iota
	attrArgs
)

// attribute whitelists, one per usage site
var attrWhitelist = [...]map[string]attrArity{
	ast.AttrArg: {
		"SDL_PRINTF_FORMAT_STRING":  attrNoArgs,
		"SDL_SCANF_FORMAT_STRING":   attrNoArgs,
		"SDL_WPRINTF_FORMAT_STRING": attrNoArgs,
		"SDL_IN_BYTECAP":            attrArgs,
		"SDL_INOUT_Z_CAP":           attrArgs,
		"SDL_OUT_Z_CAP":             attrArgs,
		"SDL_OUT_CAP":               attrArgs,
		"SDL_OUT_BYTECAP":           attrArgs,
		"SDL_OUT_Z_BYTECAP":         attrArgs,
	},
	ast.AttrFn: {
		"SDL_PRINTF_VARARG_FUNC":   attrArgs,
		"SDL_PRINTF_VARARG_FUNCV":  attrArgs,
		"SDL_WPRINTF_VARARG_FUNC":  attrArgs,
		"SDL_WPRINTF_VARARG_FUNCV": attrArgs,
		"SDL_SCANF_VARARG_FUNC":    attrArgs,
		"SDL_SCANF_VARARG_FUNCV":   attrArgs,
		"SDL_ALLOC_SIZE":           attrArgs,
		"SDL_ALLOC_SIZE2":          attrArgs,
		"SDL_MALLOC":               attrNoArgs,
		"SDL_NORETURN":             attrNoArgs,
		"SDL_ANALYZER_NORETURN":    attrNoArgs,
	},
}

// IsAttribute reports whether name is whitelisted for kind.
func IsAttribute(kind ast.AttrKind, name string) bool {
	if int(kind) >= len(attrWhitelist) {
		return false
	}
	_, ok := attrWhitelist[kind][name]
	return ok
}

// Attribute parses a whitelisted annotation macro for the given usage site.
// Identifiers outside the whitelist are a soft non-match and stay in place.
func Attribute(in Input, kind ast.AttrKind) (Input, *ast.Attribute, error) {
	tok := in.Peek()
	if tok.Kind != token.Ident || !IsAttribute(kind, tok.Text) {
		return in, nil, nil
	}
	start := in
	attr := &ast.Attribute{Kind: kind, Name: ast.Ident{Name: tok.Text, Span: tok.Span}}
	in = in.Advance()
	if attrWhitelist[kind][tok.Text] == attrArgs {
		if !in.At(token.LParen) {
			next := in.Peek()
			return start, nil, hard(diag.SynUnexpectedToken, next.Span, "expected '(' after %s, found %s", tok.Text, describe(next))
		}
		rest, args, err := CallArgs(in)
		if err != nil {
			return start, nil, err
		}
		attr.Args = *args
		in = rest
	}
	attr.Span = in.SpanSince(start)
	return in, attr, nil
}
