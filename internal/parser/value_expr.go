package parser

import (
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// ValueExpr parses a C constant expression: the Expr atoms extended with
// parentheses, unary and binary operators, casts, macro calls and defined().
// It has the same soft/hard contract as the primitives.
func ValueExpr(in Input) (Input, ast.Expr, error) {
	return binaryExpr(in, precLogicalOr)
}

func binaryExpr(in Input, minPrec int) (Input, ast.Expr, error) {
	start := in
	in, lhs, err := unaryExpr(in)
	if err != nil || lhs == nil {
		return start, nil, err
	}
	for {
		info, ok := binaryOp(in.Peek().Kind)
		if !ok || info.prec < minPrec {
			return in, lhs, nil
		}
		opTok := in.Peek()
		rest, rhs, err := binaryExpr(in.Advance(), info.prec+1)
		if err != nil {
			return start, nil, err
		}
		if rhs == nil {
			return start, nil, hard(diag.SynExpectExpression, opTok.Span, "expected operand after %q", opTok.Text)
		}
		lhs = &ast.BinaryExpr{
			Op:   info.op,
			X:    lhs,
			Y:    rhs,
			Span: lhs.ExprSpan().Cover(rhs.ExprSpan()),
		}
		in = rest
	}
}

func unaryExpr(in Input) (Input, ast.Expr, error) {
	tok := in.Peek()
	if op, ok := unaryOp(tok.Kind); ok {
		rest, x, err := unaryExpr(in.Advance())
		if err != nil {
			return in, nil, err
		}
		if x == nil {
			return in, nil, hard(diag.SynExpectExpression, tok.Span, "expected operand after %q", tok.Text)
		}
		return rest, &ast.UnaryExpr{Op: op, X: x, Span: tok.Span.Cover(x.ExprSpan())}, nil
	}

	switch tok.Kind {
	case token.LParen:
		return parenOrCast(in)
	case token.Ident:
		switch {
		case tok.Text == "defined":
			return definedExpr(in)
		case castMacros[tok.Text] && in.PeekN(1).Kind == token.LParen:
			return castMacro(in)
		case in.PeekN(1).Kind == token.LParen:
			return callExpr(in)
		}
	}
	return Expr(in)
}

func parenOrCast(in Input) (Input, ast.Expr, error) {
	start := in
	open := in.Peek()
	if rest, t, ok := castPrefix(in); ok {
		after, x, err := unaryExpr(rest)
		if err != nil {
			return start, nil, err
		}
		if x != nil {
			return after, &ast.CastExpr{Type: t, X: x, Span: after.SpanSince(start)}, nil
		}
	}

	in = in.Advance()
	rest, x, err := ValueExpr(in)
	if err != nil {
		return start, nil, err
	}
	if x == nil {
		tok := in.Peek()
		return start, nil, hard(diag.SynExpectExpression, tok.Span, "expected expression, found %s", describe(tok))
	}
	if !rest.At(token.RParen) {
		return start, nil, hard(diag.SynUnclosedParen, open.Span, "expected ')', found %s", describe(rest.Peek()))
	}
	rest = rest.Advance()
	return rest, &ast.ParenExpr{X: x, Span: rest.SpanSince(start)}, nil
}

// castPrefix matches "(T)" where T reads as a type rather than a value.
func castPrefix(in Input) (Input, ast.Type, bool) {
	rest, t, err := typeName(in.Advance())
	if err != nil || t == nil || !rest.At(token.RParen) || !isCastType(t) {
		return in, nil, false
	}
	return rest.Advance(), t, true
}

func isCastType(t ast.Type) bool {
	n, ok := ast.BaseName(t)
	if !ok {
		return false
	}
	if n.Tag != ast.TagNone || builtinTypes[n.Name] {
		return true
	}
	return looksLikeTypeName(n.Name)
}

// looksLikeTypeName accepts PREFIX_CamelCase names (SDL_Keycode, TTF_Font)
// and the SDL fixed-width integer names.
func looksLikeTypeName(name string) bool {
	if sdlIntTypes[name] {
		return true
	}
	i := strings.IndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return false
	}
	for _, c := range name[:i] {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	rest := name[i+1:]
	if rest[0] < 'A' || rest[0] > 'Z' || strings.IndexByte(rest, '_') >= 0 {
		return false
	}
	return strings.IndexFunc(rest, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0
}

var sdlIntTypes = map[string]bool{
	"Sint8": true, "Uint8": true, "Sint16": true, "Uint16": true,
	"Sint32": true, "Uint32": true, "Sint64": true, "Uint64": true,
}

var castMacros = map[string]bool{
	"SDL_static_cast":      true,
	"SDL_reinterpret_cast": true,
	"SDL_const_cast":       true,
}

// castMacro parses SDL_static_cast(T, x) and friends into a CastExpr.
func castMacro(in Input) (Input, ast.Expr, error) {
	start := in
	name := in.Peek()
	in = in.Advance().Advance()
	rest, t, err := typeName(in)
	if err != nil {
		return start, nil, err
	}
	if t == nil {
		return start, nil, hard(diag.SynExpectType, in.Peek().Span, "expected type in %s", name.Text)
	}
	rest, _, err = expect(rest, token.Comma, diag.SynUnexpectedToken, "','")
	if err != nil {
		return start, nil, err
	}
	rest, x, err := ValueExpr(rest)
	if err != nil {
		return start, nil, err
	}
	if x == nil {
		return start, nil, hard(diag.SynExpectExpression, rest.Peek().Span, "expected expression in %s", name.Text)
	}
	rest, _, err = expect(rest, token.RParen, diag.SynUnclosedParen, "')'")
	if err != nil {
		return start, nil, err
	}
	return rest, &ast.CastExpr{Type: t, X: x, Span: rest.SpanSince(start)}, nil
}

func callExpr(in Input) (Input, ast.Expr, error) {
	start := in
	fun := in.Peek()
	rest, args, err := CallArgs(in.Advance())
	if err != nil {
		return start, nil, err
	}
	return rest, &ast.CallExpr{
		Fun:  ast.NewIdent(fun.Text, fun.Span),
		Args: *args,
		Span: rest.SpanSince(start),
	}, nil
}

// definedExpr parses "defined X" and "defined(X)".
func definedExpr(in Input) (Input, ast.Expr, error) {
	start := in
	in = in.Advance()
	paren := in.At(token.LParen)
	if paren {
		in = in.Advance()
	}
	tok := in.Peek()
	if tok.Kind != token.Ident {
		return start, nil, hard(diag.SynExpectIdentifier, tok.Span, "expected macro name after defined, found %s", describe(tok))
	}
	in = in.Advance()
	if paren {
		var err error
		in, _, err = expect(in, token.RParen, diag.SynUnclosedParen, "')'")
		if err != nil {
			return start, nil, err
		}
	}
	return in, &ast.DefinedExpr{Name: ast.NewIdent(tok.Text, tok.Span), Span: in.SpanSince(start)}, nil
}
