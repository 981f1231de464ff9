package parser

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

// builtinTypes are the C type names the model never needs to resolve.
var builtinTypes = map[string]bool{
	"void": true, "char": true, "signed char": true, "unsigned char": true,
	"short": true, "unsigned short": true, "int": true, "unsigned int": true,
	"long": true, "unsigned long": true, "long long": true, "unsigned long long": true,
	"float": true, "double": true, "long double": true, "bool": true,
	"size_t": true, "wchar_t": true, "uintptr_t": true, "intptr_t": true,
	"int8_t": true, "uint8_t": true, "int16_t": true, "uint16_t": true,
	"int32_t": true, "uint32_t": true, "int64_t": true, "uint64_t": true,
	"va_list": true,
}

// IsBuiltinType reports whether name is a C builtin or standard header type.
func IsBuiltinType(name string) bool { return builtinTypes[name] }

var builtinWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "bool": true, "_Bool": true,
}

// noiseIdents are calling-convention and visibility macros that carry no
// type information.
var noiseIdents = map[string]bool{
	"SDLCALL":          true,
	"SDL_DECLSPEC":     true,
	"SDLMAIN_DECLSPEC": true,
	"SDL_RESTRICT":     true,
	"SDL_DEPRECATED":   true,
	"SDL_UNUSED":       true,
	"SDL_NODISCARD":    true,
	"__cdecl":          true,
	"__stdcall":        true,
}

func skipNoise(in Input) Input {
	for in.At(token.Ident) && noiseIdents[in.Peek().Text] {
		in = in.Advance()
	}
	return in
}

// typeSpec parses declaration specifiers: qualifiers, builtin type words,
// tagged names and typedef names. A soft non-match leaves in unchanged.
func typeSpec(in Input) (Input, *ast.NamedType, error) {
	start := in
	var (
		isConst bool
		sign    string
		words   []string
		named   *ast.NamedType
	)
specs:
	for {
		tok := in.Peek()
		switch tok.Kind {
		case token.KwConst:
			isConst = true
		case token.KwVolatile, token.KwRestrict:
		case token.KwSigned, token.KwUnsigned:
			if named != nil {
				break specs
			}
			sign = tok.Text
		case token.KwStruct, token.KwUnion, token.KwEnum:
			tag := in.PeekN(1)
			if named != nil || len(words) > 0 || sign != "" || tag.Kind != token.Ident {
				break specs
			}
			named = &ast.NamedType{Name: tag.Text, Tag: tagKind(tok.Kind)}
			in = in.Advance()
		case token.Ident:
			switch {
			case noiseIdents[tok.Text]:
			case builtinWords[tok.Text] && named == nil:
				words = append(words, tok.Text)
			case named == nil && len(words) == 0 && sign == "":
				named = &ast.NamedType{Name: tok.Text}
			default:
				break specs
			}
		default:
			break specs
		}
		in = in.Advance()
	}

	if named == nil && len(words) == 0 && sign == "" {
		return start, nil, nil
	}
	if named == nil {
		named = &ast.NamedType{Name: canonicalBuiltin(sign, words)}
	}
	named.Const = isConst
	named.Span = in.SpanSince(start)
	return in, named, nil
}

func tagKind(k token.Kind) ast.TagKind {
	switch k {
	case token.KwStruct:
		return ast.TagStruct
	case token.KwUnion:
		return ast.TagUnion
	case token.KwEnum:
		return ast.TagEnum
	}
	return ast.TagNone
}

// canonicalBuiltin spells a builtin the way builtinTypes keys it.
func canonicalBuiltin(sign string, words []string) string {
	var longs int
	has := map[string]bool{}
	for _, w := range words {
		if w == "long" {
			longs++
		}
		has[w] = true
	}
	var base string
	switch {
	case has["char"]:
		base = "char"
	case has["short"]:
		base = "short"
	case longs >= 2:
		base = "long long"
	case longs == 1 && has["double"]:
		return "long double"
	case longs == 1:
		base = "long"
	case has["double"]:
		return "double"
	case has["float"]:
		return "float"
	case has["void"]:
		return "void"
	case has["bool"] || has["_Bool"]:
		return "bool"
	default:
		base = "int"
	}
	switch {
	case sign == "unsigned":
		return "unsigned " + base
	case sign == "signed" && base == "char":
		return "signed char"
	}
	return base
}

type pointerLevel struct {
	isConst bool
	span    source.Span
}

// declarator is the parsed shape around a base type: pointers, an optional
// name and array/function suffixes, possibly nested in parentheses.
type declarator struct {
	name  *ast.Ident
	ptrs  []pointerLevel
	suffs []func(ast.Type) ast.Type
	inner *declarator
}

// apply builds the declared type from base, inside out.
func (d *declarator) apply(base ast.Type) ast.Type {
	t := base
	for _, p := range d.ptrs {
		t = &ast.PointerType{Elem: t, Const: p.isConst, Span: base.TypeSpan().Cover(p.span)}
	}
	for i := len(d.suffs) - 1; i >= 0; i-- {
		t = d.suffs[i](t)
	}
	if d.inner != nil {
		t = d.inner.apply(t)
	}
	return t
}

// identName returns the declared name, looking through nested declarators.
func (d *declarator) identName() *ast.Ident {
	for cur := d; cur != nil; cur = cur.inner {
		if cur.name != nil {
			return cur.name
		}
	}
	return nil
}

// plain reports a bare name with no pointers or suffixes.
func (d *declarator) plain() bool {
	return d.inner == nil && len(d.ptrs) == 0 && len(d.suffs) == 0 && d.name != nil
}

func parseDeclarator(in Input) (Input, *declarator, error) {
	d := &declarator{}
	for {
		in = skipNoise(in)
		if !in.At(token.Star) {
			break
		}
		star := in.Peek()
		in = in.Advance()
		lvl := pointerLevel{span: star.Span}
		for in.At(token.KwConst) || in.At(token.KwVolatile) || in.At(token.KwRestrict) {
			if in.At(token.KwConst) {
				lvl.isConst = true
			}
			in = in.Advance()
		}
		d.ptrs = append(d.ptrs, lvl)
	}
	in = skipNoise(in)

	switch {
	case in.At(token.Ident):
		tok := in.Peek()
		d.name = ast.NewIdent(tok.Text, tok.Span)
		in = in.Advance()
	case in.At(token.LParen) && startsNestedDeclarator(in):
		open := in.Peek()
		rest, inner, err := parseDeclarator(in.Advance())
		if err != nil {
			return in, nil, err
		}
		if !rest.At(token.RParen) {
			return in, nil, hard(diag.SynUnclosedParen, open.Span, "expected ')' in declarator, found %s", describe(rest.Peek()))
		}
		d.inner = inner
		in = rest.Advance()
	}

	for {
		switch {
		case in.At(token.LBracket):
			rest, suff, err := arraySuffix(in)
			if err != nil {
				return in, nil, err
			}
			d.suffs = append(d.suffs, suff)
			in = rest
		case in.At(token.LParen):
			start := in
			rest, params, variadic, err := paramList(in)
			if err != nil {
				return in, nil, err
			}
			sp := rest.SpanSince(start)
			d.suffs = append(d.suffs, func(t ast.Type) ast.Type {
				return &ast.FuncType{Result: t, Params: params, Variadic: variadic, Span: t.TypeSpan().Cover(sp)}
			})
			in = rest
		default:
			return in, d, nil
		}
	}
}

// startsNestedDeclarator tells "(*name)" apart from a parameter list.
func startsNestedDeclarator(in Input) bool {
	in = skipNoise(in.Advance())
	return in.At(token.Star)
}

func arraySuffix(in Input) (Input, func(ast.Type) ast.Type, error) {
	open := in.Peek()
	in = in.Advance()
	var n ast.Expr
	if !in.At(token.RBracket) {
		rest, e, err := ValueExpr(in)
		if err != nil {
			return in, nil, err
		}
		if e == nil {
			return in, nil, hard(diag.SynExpectExpression, in.Peek().Span, "expected array length, found %s", describe(in.Peek()))
		}
		n, in = e, rest
	}
	if !in.At(token.RBracket) {
		return in, nil, hard(diag.SynUnclosedBracket, open.Span, "expected ']', found %s", describe(in.Peek()))
	}
	sp := open.Span.Cover(in.Peek().Span)
	return in.Advance(), func(t ast.Type) ast.Type {
		return &ast.ArrayType{Elem: t, Len: n, Span: t.TypeSpan().Cover(sp)}
	}, nil
}

// paramList parses "(params)". "()" and "(void)" both mean no parameters.
func paramList(in Input) (Input, []*ast.Param, bool, error) {
	open := in.Peek()
	in = in.Advance()
	if in.At(token.RParen) {
		return in.Advance(), nil, false, nil
	}
	if tok := in.Peek(); tok.Kind == token.Ident && tok.Text == "void" && in.PeekN(1).Kind == token.RParen {
		return in.Advance().Advance(), nil, false, nil
	}

	var params []*ast.Param
	for {
		if in.At(token.Ellipsis) {
			dots := in.Peek()
			in = in.Advance()
			if !in.At(token.RParen) {
				return in, nil, false, hard(diag.SynVariadicMustBeLast, dots.Span, "'...' must be the last parameter")
			}
			return in.Advance(), params, true, nil
		}
		rest, p, err := param(in)
		if err != nil {
			return in, nil, false, err
		}
		params = append(params, p)
		in = rest
		switch tok := in.Peek(); tok.Kind {
		case token.Comma:
			in = in.Advance()
		case token.RParen:
			return in.Advance(), params, false, nil
		case token.EOF:
			return in, nil, false, hard(diag.SynUnclosedParen, open.Span, "unclosed parameter list")
		default:
			return in, nil, false, hard(diag.SynUnexpectedToken, tok.Span, "expected ',' or ')' in parameter list, found %s", describe(tok))
		}
	}
}

func param(in Input) (Input, *ast.Param, error) {
	start := in
	p := &ast.Param{}
	for {
		rest, attr, err := Attribute(in, ast.AttrArg)
		if err != nil {
			return start, nil, err
		}
		if attr == nil {
			break
		}
		p.Attrs = append(p.Attrs, *attr)
		in = rest
	}
	rest, base, err := typeSpec(in)
	if err != nil {
		return start, nil, err
	}
	if base == nil {
		return start, nil, hard(diag.SynExpectType, in.Peek().Span, "expected parameter type, found %s", describe(in.Peek()))
	}
	rest, d, err := parseDeclarator(rest)
	if err != nil {
		return start, nil, err
	}
	p.Name = d.identName()
	p.Type = d.apply(base)
	p.Span = rest.SpanSince(start)
	return rest, p, nil
}

// typeName parses an abstract type such as "const char *" for casts.
// A declarator that names something is not a type name.
func typeName(in Input) (Input, ast.Type, error) {
	start := in
	rest, base, err := typeSpec(in)
	if err != nil || base == nil {
		return start, nil, err
	}
	rest, d, err := parseDeclarator(rest)
	if err != nil {
		return start, nil, err
	}
	if d.identName() != nil {
		return start, nil, nil
	}
	return rest, d.apply(base), nil
}
