package model

import (
	"fmt"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
)

const maxExpansionDepth = 32

// builtinMacros are function-like macros defined with token pasting, which
// the parser passes through.
var builtinMacros = map[string]string{
	"SDL_UINT64_C": "Uint64",
	"SDL_SINT64_C": "Sint64",
}

// expand replaces calls of function-like macros by their substituted bodies.
// Only parameter substitution is performed.
func (s *symbols) expand(e ast.Expr) (ast.Expr, error) {
	return s.expandDepth(e, 0)
}

func (s *symbols) expandDepth(e ast.Expr, depth int) (ast.Expr, error) {
	switch x := e.(type) {
	case nil, *ast.Ident, *ast.Literal, *ast.DefinedExpr:
		return e, nil
	case *ast.ParenExpr:
		inner, err := s.expandDepth(x.X, depth)
		if err != nil || inner == x.X {
			return x, err
		}
		return &ast.ParenExpr{X: inner, Span: x.Span}, nil
	case *ast.UnaryExpr:
		inner, err := s.expandDepth(x.X, depth)
		if err != nil || inner == x.X {
			return x, err
		}
		return &ast.UnaryExpr{Op: x.Op, X: inner, Span: x.Span}, nil
	case *ast.BinaryExpr:
		l, err := s.expandDepth(x.X, depth)
		if err != nil {
			return x, err
		}
		r, err := s.expandDepth(x.Y, depth)
		if err != nil {
			return x, err
		}
		if l == x.X && r == x.Y {
			return x, nil
		}
		return &ast.BinaryExpr{Op: x.Op, X: l, Y: r, Span: x.Span}, nil
	case *ast.CastExpr:
		inner, err := s.expandDepth(x.X, depth)
		if err != nil || inner == x.X {
			return x, err
		}
		return &ast.CastExpr{Type: x.Type, X: inner, Span: x.Span}, nil
	case *ast.CallExpr:
		return s.expandCall(x, depth)
	}
	return e, nil
}

func (s *symbols) expandCall(call *ast.CallExpr, depth int) (ast.Expr, error) {
	name := call.Fun.Name
	args := make([]ast.Expr, len(call.Args.Args))
	for i, a := range call.Args.Args {
		x, err := s.expandDepth(a, depth)
		if err != nil {
			return call, err
		}
		args[i] = x
	}

	if typ, ok := builtinMacros[name]; ok {
		if len(args) != 1 {
			return call, arityError(call, 1)
		}
		return ast.CastTo(ast.Named(typ, call.Fun.Span), args[0]), nil
	}
	def, ok := s.macros[name]
	if !ok {
		return call, diag.NewError(diag.ModUnresolvedName, call.Fun.Span, fmt.Sprintf("unknown macro %s", name))
	}
	if depth >= maxExpansionDepth {
		return call, diag.NewError(diag.ModMacroRecursion, call.Span, fmt.Sprintf("expansion of %s does not terminate", name))
	}
	if len(args) != len(def.Params) {
		return call, arityError(call, len(def.Params))
	}
	params := make(map[string]ast.Expr, len(args))
	for i, p := range def.Params {
		params[p.Name] = args[i]
	}
	body := substitute(def.Value, params)
	if b, ok := body.(*ast.BinaryExpr); ok {
		body = &ast.ParenExpr{X: b, Span: b.Span}
	}
	return s.expandDepth(body, depth+1)
}

func arityError(call *ast.CallExpr, want int) error {
	return diag.NewError(diag.ModMacroArity, call.Span,
		fmt.Sprintf("macro %s expects %d arguments, got %d", call.Fun.Name, want, call.Args.Len()))
}

// substitute copies e, replacing parameter identifiers by their arguments.
func substitute(e ast.Expr, params map[string]ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.Ident:
		if arg, ok := params[x.Name]; ok {
			if b, ok := arg.(*ast.BinaryExpr); ok {
				return &ast.ParenExpr{X: b, Span: b.Span}
			}
			return arg
		}
		return x
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: substitute(x.X, params), Span: x.Span}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: x.Op, X: substitute(x.X, params), Span: x.Span}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: x.Op, X: substitute(x.X, params), Y: substitute(x.Y, params), Span: x.Span}
	case *ast.CastExpr:
		return &ast.CastExpr{Type: x.Type, X: substitute(x.X, params), Span: x.Span}
	case *ast.CallExpr:
		args := make([]ast.Expr, len(x.Args.Args))
		for i, a := range x.Args.Args {
			args[i] = substitute(a, params)
		}
		return &ast.CallExpr{Fun: x.Fun, Args: ast.CallArgs{Args: args, Span: x.Args.Span}, Span: x.Span}
	}
	return e
}
