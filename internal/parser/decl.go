package parser

import (
	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// inlineMacros mark function definitions with a body in the header.
var inlineMacros = map[string]bool{
	"SDL_FORCE_INLINE": true,
	"SDL_INLINE":       true,
}

type fileParser struct {
	module string
	pp     *preprocessed
	decls  []ast.Decl
	next   int // next directive item to flush
	extern int // depth of extern "C" { blocks
}

func (p *fileParser) parse() ([]ast.Decl, error) {
	in := NewInput(p.pp.toks)
	for {
		p.flush(in.Pos())
		if in.AtEOF() {
			break
		}
		rest, err := p.topLevel(in)
		if err != nil {
			return nil, err
		}
		if rest.Same(in) {
			// every branch of topLevel consumes at least one token
			rest = in.Advance()
		}
		in = rest
	}
	p.flush(len(p.pp.toks))
	return p.decls, nil
}

func (p *fileParser) flush(pos int) {
	for p.next < len(p.pp.items) && p.pp.items[p.next].at <= pos {
		p.decls = append(p.decls, p.pp.items[p.next].decl)
		p.next++
	}
}

func (p *fileParser) info(in Input) ast.DeclInfo {
	return ast.DeclInfo{
		Module: p.module,
		Doc:    leadingDoc(in.Peek()),
		Cond:   p.pp.conds[in.Pos()],
	}
}

func (p *fileParser) topLevel(in Input) (Input, error) {
	tok := in.Peek()
	switch {
	case tok.Kind == token.Semicolon:
		return in.Advance(), nil
	case tok.Kind == token.KwTypedef:
		return p.typedef(in)
	case tok.Kind == token.KwStruct || tok.Kind == token.KwUnion || tok.Kind == token.KwEnum:
		if hasBody(in) || in.PeekN(1).Kind == token.Ident && in.PeekN(2).Kind == token.Semicolon {
			return p.tagDecl(in)
		}
	case tok.Kind == token.KwExtern && in.PeekN(1).Kind == token.StringLit:
		start := in
		info := p.info(in)
		in = in.Advance().Advance()
		if in.At(token.LBrace) {
			p.extern++
			in = in.Advance()
		}
		info.Span = in.SpanSince(start)
		p.decls = append(p.decls, &ast.Skipped{DeclInfo: info, Reason: "linkage specification"})
		return in, nil
	case tok.Kind == token.RBrace && p.extern > 0:
		p.extern--
		return in.Advance(), nil
	case tok.Kind == token.Ident && in.PeekN(1).Kind == token.LParen &&
		!IsAttribute(ast.AttrFn, tok.Text) && !noiseIdents[tok.Text] && !inlineMacros[tok.Text]:
		return p.macroInvocation(in)
	}
	return p.function(in)
}

// hasBody reports "struct {", "struct Tag {" and the enum equivalents.
func hasBody(in Input) bool {
	return in.PeekN(1).Kind == token.LBrace ||
		in.PeekN(1).Kind == token.Ident && in.PeekN(2).Kind == token.LBrace
}

// macroInvocation skips NAME(...) with an optional ';'.
func (p *fileParser) macroInvocation(in Input) (Input, error) {
	start := in
	info := p.info(in)
	rest, err := skipBalanced(in.Advance(), token.LParen, token.RParen, diag.SynUnclosedParen)
	if err != nil {
		return start, err
	}
	if rest.At(token.Semicolon) {
		rest = rest.Advance()
	}
	info.Span = rest.SpanSince(start)
	p.decls = append(p.decls, &ast.Skipped{DeclInfo: info, Reason: "macro invocation " + start.Peek().Text})
	return rest, nil
}

// skipBalanced consumes from an opening token to its matching close.
func skipBalanced(in Input, open, closing token.Kind, code diag.Code) (Input, error) {
	first := in.Peek()
	depth := 0
	for {
		tok := in.Peek()
		switch tok.Kind {
		case token.EOF:
			return in, hard(code, first.Span, "unbalanced %q", open.String())
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return in.Advance(), nil
			}
		}
		in = in.Advance()
	}
}

// skipStatement passes over an unrecognised statement up to its ';'.
func (p *fileParser) skipStatement(start Input, reason string) (Input, error) {
	info := p.info(start)
	in := start
	depth := 0
	for {
		tok := in.Peek()
		switch tok.Kind {
		case token.EOF:
			return start, hard(diag.SynUnterminatedDecl, start.Peek().Span, "declaration is not terminated by ';'")
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.RBrace:
			if depth == 0 && in.Same(start) {
				return start, hard(diag.SynUnexpectedToken, tok.Span, "unexpected '}' outside a declaration")
			}
			if depth == 0 {
				info.Span = in.SpanSince(start)
				p.decls = append(p.decls, &ast.Skipped{DeclInfo: info, Reason: reason})
				return in, nil
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				in = in.Advance()
				info.Span = in.SpanSince(start)
				p.decls = append(p.decls, &ast.Skipped{DeclInfo: info, Reason: reason})
				return in, nil
			}
		}
		in = in.Advance()
	}
}

// function parses a prototype or an inline definition. Other declarations
// of the same shape, such as variables, are skipped.
func (p *fileParser) function(in Input) (Input, error) {
	start := in
	info := p.info(in)
	var (
		attrs  []ast.Attribute
		inline bool
	)
specs:
	for {
		tok := in.Peek()
		switch {
		case tok.Kind == token.KwExtern || tok.Kind == token.KwStatic:
		case tok.Kind == token.KwInline:
			inline = true
		case tok.Kind == token.Ident && inlineMacros[tok.Text]:
			inline = true
		case tok.Kind == token.Ident && noiseIdents[tok.Text]:
		default:
			rest, attr, err := Attribute(in, ast.AttrFn)
			if err != nil {
				return start, err
			}
			if attr == nil {
				break specs
			}
			attrs = append(attrs, *attr)
			in = rest
			continue
		}
		in = in.Advance()
	}

	rest, base, err := typeSpec(in)
	if err != nil {
		return start, err
	}
	if base == nil {
		return p.skipStatement(start, "unrecognised declaration")
	}
	rest, d, err := parseDeclarator(rest)
	if err != nil {
		return start, err
	}
	name := d.identName()
	ft, isFunc := d.apply(base).(*ast.FuncType)
	if name == nil || !isFunc || d.inner != nil {
		return p.skipStatement(start, "not a function declaration")
	}

	for {
		rest = skipNoise(rest)
		after, attr, err := Attribute(rest, ast.AttrFn)
		if err != nil {
			return start, err
		}
		if attr == nil {
			break
		}
		attrs = append(attrs, *attr)
		rest = after
	}

	switch {
	case rest.At(token.Semicolon):
		rest = rest.Advance()
	case rest.At(token.LBrace):
		rest, err = skipBalanced(rest, token.LBrace, token.RBrace, diag.SynUnclosedBrace)
		if err != nil {
			return start, err
		}
		inline = true
	default:
		tok := rest.Peek()
		return start, hard(diag.SynExpectSemicolon, tok.Span, "expected ';' after declaration of %s, found %s", name.Name, describe(tok))
	}

	info.Span = rest.SpanSince(start)
	p.decls = append(p.decls, &ast.FuncDecl{
		DeclInfo: info,
		Name:     *name,
		Type:     ft,
		Attrs:    attrs,
		Inline:   inline,
	})
	return rest, nil
}

// typedef parses every typedef form.
func (p *fileParser) typedef(in Input) (Input, error) {
	start := in
	info := p.info(in)
	in = in.Advance()

	var (
		out  []ast.Decl
		base *ast.NamedType
		rec  *ast.RecordDecl
		enum *ast.EnumDecl
		err  error
	)
	switch tok := in.Peek(); {
	case (tok.Kind == token.KwStruct || tok.Kind == token.KwUnion) && hasBody(in):
		in, rec, err = p.recordBody(in)
		if err != nil {
			return start, err
		}
		base = recordRef(rec)
		out = append(out, rec)
	case tok.Kind == token.KwEnum && hasBody(in):
		in, enum, err = p.enumBody(in)
		if err != nil {
			return start, err
		}
		base = &ast.NamedType{Name: enum.Tag.String(), Tag: ast.TagEnum, Span: enum.Span}
		out = append(out, enum)
	default:
		in, base, err = typeSpec(in)
		if err != nil {
			return start, err
		}
		if base == nil {
			tok := in.Peek()
			return start, hard(diag.SynExpectType, tok.Span, "expected type after typedef, found %s", describe(tok))
		}
	}

	for {
		rest, d, err := parseDeclarator(in)
		if err != nil {
			return start, err
		}
		name := d.identName()
		if name == nil {
			tok := in.Peek()
			return start, hard(diag.SynExpectIdentifier, tok.Span, "expected typedef name, found %s", describe(tok))
		}
		switch {
		case rec != nil && rec.Typedef == nil && d.plain():
			rec.Typedef = name
		case enum != nil && enum.Typedef == nil && d.plain():
			enum.Typedef = name
		case rec == nil && enum == nil && d.plain() && (base.Tag == ast.TagStruct || base.Tag == ast.TagUnion):
			kind := ast.RecordStruct
			if base.Tag == ast.TagUnion {
				kind = ast.RecordUnion
			}
			out = append(out, &ast.RecordDecl{
				Kind:    kind,
				Tag:     ast.NewIdent(base.Name, base.Span),
				Typedef: name,
				Opaque:  true,
			})
		default:
			out = append(out, &ast.Typedef{Name: *name, Type: d.apply(base)})
		}
		in = rest
		if !in.At(token.Comma) {
			break
		}
		in = in.Advance()
	}

	in, _, err = expect(in, token.Semicolon, diag.SynExpectSemicolon, "';' after typedef")
	if err != nil {
		return start, err
	}
	info.Span = in.SpanSince(start)
	for _, d := range out {
		*d.Info() = info
	}
	p.decls = append(p.decls, out...)
	return in, nil
}

func recordRef(rec *ast.RecordDecl) *ast.NamedType {
	tag := ast.TagStruct
	if rec.Kind == ast.RecordUnion {
		tag = ast.TagUnion
	}
	return &ast.NamedType{Name: rec.Tag.String(), Tag: tag, Span: rec.Span}
}

// tagDecl parses "struct X { ... };", "enum X { ... };" and "struct X;".
func (p *fileParser) tagDecl(in Input) (Input, error) {
	start := in
	info := p.info(in)
	kw := in.Peek()

	var decl ast.Decl
	switch {
	case !hasBody(in):
		tag := in.PeekN(1)
		kind := ast.RecordStruct
		if kw.Kind == token.KwUnion {
			kind = ast.RecordUnion
		}
		if kw.Kind == token.KwEnum {
			in = in.Advance().Advance().Advance()
			info.Span = in.SpanSince(start)
			p.decls = append(p.decls, &ast.Skipped{DeclInfo: info, Reason: "enum forward declaration"})
			return in, nil
		}
		decl = &ast.RecordDecl{Kind: kind, Tag: ast.NewIdent(tag.Text, tag.Span), Opaque: true}
		in = in.Advance().Advance()
	case kw.Kind == token.KwEnum:
		rest, enum, err := p.enumBody(in)
		if err != nil {
			return start, err
		}
		decl, in = enum, rest
	default:
		rest, rec, err := p.recordBody(in)
		if err != nil {
			return start, err
		}
		decl, in = rec, rest
	}

	in, _, err := expect(in, token.Semicolon, diag.SynExpectSemicolon, "';' after "+kw.Text+" definition")
	if err != nil {
		return start, err
	}
	info.Span = in.SpanSince(start)
	*decl.Info() = info
	p.decls = append(p.decls, decl)
	return in, nil
}

// recordBody parses "struct Tag? { fields }".
func (p *fileParser) recordBody(in Input) (Input, *ast.RecordDecl, error) {
	start := in
	rec := &ast.RecordDecl{Kind: ast.RecordStruct}
	if in.At(token.KwUnion) {
		rec.Kind = ast.RecordUnion
	}
	in = in.Advance()
	if in.At(token.Ident) {
		tok := in.Peek()
		rec.Tag = ast.NewIdent(tok.Text, tok.Span)
		in = in.Advance()
	}
	open := in.Peek()
	in = in.Advance()
	for !in.At(token.RBrace) {
		if in.AtEOF() {
			return start, nil, hard(diag.SynUnclosedBrace, open.Span, "%s body is not closed", rec.Kind)
		}
		rest, fields, err := p.field(in)
		if err != nil {
			return start, nil, err
		}
		rec.Fields = append(rec.Fields, fields...)
		in = rest
	}
	in = in.Advance()
	rec.Span = in.SpanSince(start)
	return in, rec, nil
}

// field parses one member declaration, which may declare several fields.
func (p *fileParser) field(in Input) (Input, []*ast.Field, error) {
	start := in
	doc := leadingDoc(in.Peek())
	cond := p.pp.conds[in.Pos()]

	var (
		base   ast.Type
		nested *ast.RecordDecl
	)
	switch tok := in.Peek(); {
	case (tok.Kind == token.KwStruct || tok.Kind == token.KwUnion) && hasBody(in):
		rest, rec, err := p.recordBody(in)
		if err != nil {
			return start, nil, err
		}
		rec.Module = p.module
		nested, base, in = rec, recordRef(rec), rest
	default:
		rest, b, err := typeSpec(in)
		if err != nil {
			return start, nil, err
		}
		if b == nil {
			return start, nil, hard(diag.SynExpectType, tok.Span, "expected field type, found %s", describe(tok))
		}
		base, in = b, rest
	}

	var fields []*ast.Field
	if in.At(token.Semicolon) && nested != nil {
		fields = append(fields, &ast.Field{Type: base, Record: nested, Doc: doc, Cond: cond, Span: in.SpanSince(start)})
	}
	for len(fields) == 0 || in.At(token.Comma) {
		if len(fields) > 0 {
			in = in.Advance()
		}
		fstart := in
		rest, d, err := parseDeclarator(in)
		if err != nil {
			return start, nil, err
		}
		name := d.identName()
		if name == nil {
			tok := in.Peek()
			return start, nil, hard(diag.SynExpectIdentifier, tok.Span, "expected field name, found %s", describe(tok))
		}
		f := &ast.Field{Name: name, Type: d.apply(base), Record: nested, Doc: doc, Cond: cond}
		in = rest
		if in.At(token.Colon) {
			rest, bits, err := ValueExpr(in.Advance())
			if err != nil {
				return start, nil, err
			}
			if bits == nil {
				return start, nil, hard(diag.SynExpectExpression, in.Peek().Span, "expected bit-field width")
			}
			f.Bits, in = bits, rest
		}
		f.Span = in.SpanSince(fstart)
		fields = append(fields, f)
	}

	in, _, err := expect(in, token.Semicolon, diag.SynExpectSemicolon, "';' after field")
	if err != nil {
		return start, nil, err
	}
	if td := trailingDoc(in.Peek()); td != nil {
		for _, f := range fields {
			if f.Doc == nil {
				f.Doc = td
			}
		}
	}
	return in, fields, nil
}

// enumBody parses "enum Tag? { A = v, B, ... }".
func (p *fileParser) enumBody(in Input) (Input, *ast.EnumDecl, error) {
	start := in
	enum := &ast.EnumDecl{}
	in = in.Advance()
	if in.At(token.Ident) {
		tok := in.Peek()
		enum.Tag = ast.NewIdent(tok.Text, tok.Span)
		in = in.Advance()
	}
	open := in.Peek()
	in = in.Advance()
	for !in.At(token.RBrace) {
		tok := in.Peek()
		if tok.Kind == token.EOF {
			return start, nil, hard(diag.SynUnclosedBrace, open.Span, "enum body is not closed")
		}
		if tok.Kind != token.Ident {
			return start, nil, hard(diag.SynExpectIdentifier, tok.Span, "expected enumerator, found %s", describe(tok))
		}
		vstart := in
		v := &ast.EnumValue{
			Name: ast.Ident{Name: tok.Text, Span: tok.Span},
			Doc:  leadingDoc(tok),
			Cond: p.pp.conds[in.Pos()],
		}
		in = in.Advance()
		if in.At(token.Assign) {
			eq := in.Peek()
			rest, x, err := ValueExpr(in.Advance())
			if err != nil {
				return start, nil, err
			}
			if x == nil {
				return start, nil, hard(diag.SynExpectExpression, eq.Span, "expected value for %s", tok.Text)
			}
			v.Value, in = x, rest
		}
		v.Span = in.SpanSince(vstart)
		td := trailingDoc(in.Peek())
		switch {
		case in.At(token.Comma):
			in = in.Advance()
			if td == nil {
				td = trailingDoc(in.Peek())
			}
		case in.AtEOF():
			return start, nil, hard(diag.SynUnclosedBrace, open.Span, "enum body is not closed")
		case !in.At(token.RBrace):
			next := in.Peek()
			return start, nil, hard(diag.SynUnexpectedToken, next.Span, "expected ',' or '}' after %s, found %s", tok.Text, describe(next))
		}
		if v.Doc == nil {
			v.Doc = td
		}
		enum.Values = append(enum.Values, v)
	}
	in = in.Advance()
	enum.Span = in.SpanSince(start)
	return in, enum, nil
}
