package parser

import (
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/token"
)

// knownFalse macros are never defined for binding generation.
var knownFalse = map[string]bool{
	"__cplusplus":                    true,
	"SDL_WIKI_DOCUMENTATION_SECTION": true,
}

type anchored struct {
	at   int // index of the next active token when the directive was seen
	decl ast.Decl
}

// preprocessed is a file with its directives resolved: the active tokens,
// the condition every token is gated on, and the directive declarations
// positioned between them.
type preprocessed struct {
	toks  []token.Token
	conds []ast.Cond
	items []anchored
	doc   *ast.Doc
}

type condFrame struct {
	open       token.Token
	outer      bool // enclosing region is active
	active     bool
	taken      bool       // a branch already evaluated to true
	prior      []ast.Expr // unknown conditions of earlier branches
	cond       ast.Cond
	sawElse    bool
	guard      bool
	maybeGuard string
}

type preprocessor struct {
	module string
	frames []*condFrame
	cond   ast.Cond
	out    *preprocessed
	seen   bool // a token or directive other than a leading #ifndef was seen
}

func preprocess(toks []token.Token, module string) (*preprocessed, error) {
	pp := &preprocessor{module: module, out: &preprocessed{}}
	pp.out.doc = moduleDoc(toks)

	in := NewInput(toks)
	for !in.AtEOF() {
		tok := in.Peek()
		if tok.Kind == token.Hash && tok.StartsLine() {
			line, rest := in.Line()
			if err := pp.directive(line, rest.Peek()); err != nil {
				return nil, err
			}
			in = rest
			continue
		}
		pp.touch()
		if pp.active() {
			pp.out.toks = append(pp.out.toks, tok)
			pp.out.conds = append(pp.out.conds, pp.cond)
		}
		in = in.Advance()
	}
	if n := len(pp.frames); n > 0 {
		open := pp.frames[n-1].open
		return nil, hard(diag.SynUnterminatedCond, open.Span, "conditional block is not closed by #endif")
	}
	pp.out.toks = append(pp.out.toks, in.Peek())
	pp.out.conds = append(pp.out.conds, nil)
	return pp.out, nil
}

func (pp *preprocessor) active() bool {
	n := len(pp.frames)
	return n == 0 || pp.frames[n-1].active
}

// touch ends the window in which an #ifndef can still turn out to be the
// include guard.
func (pp *preprocessor) touch() {
	pp.seen = true
	if n := len(pp.frames); n > 0 {
		pp.frames[n-1].maybeGuard = ""
	}
}

func (pp *preprocessor) recompute() {
	var c ast.Cond
	for _, f := range pp.frames {
		if f.guard {
			continue
		}
		c = append(c, f.cond...)
	}
	pp.cond = c
}

func (pp *preprocessor) anchor(d ast.Decl) {
	pp.out.items = append(pp.out.items, anchored{at: len(pp.out.toks), decl: d})
}

// directive handles one preprocessor line. line starts at '#'; next is the
// first token after the line.
func (pp *preprocessor) directive(line Input, next token.Token) error {
	hash := line.Peek()
	line = line.Advance()
	if line.AtEOF() {
		return nil
	}
	nameTok := line.Peek()
	body := line.Advance()
	lineSpan := hash.Span.Cover(line.lastSpan())

	switch nameTok.Text {
	case "if":
		e, err := pp.condExpr(body, nameTok)
		if err != nil {
			return err
		}
		pp.touch()
		pp.push(hash, e, "")
		return nil
	case "ifdef", "ifndef":
		id := body.Peek()
		if id.Kind != token.Ident {
			return hard(diag.SynBadDirective, nameTok.Span, "#%s expects a macro name", nameTok.Text)
		}
		var e ast.Expr = &ast.DefinedExpr{Name: ast.NewIdent(id.Text, id.Span), Span: id.Span}
		guard := ""
		if nameTok.Text == "ifndef" {
			e = &ast.UnaryExpr{Op: ast.ExprUnaryNot, X: e, Span: id.Span}
			if !pp.seen && len(pp.frames) == 0 {
				guard = id.Text
			}
		}
		pp.touch()
		pp.push(hash, e, guard)
		return nil
	case "elif", "else":
		f := pp.top()
		if f == nil {
			return hard(diag.SynDanglingElse, hash.Span, "#%s without #if", nameTok.Text)
		}
		if f.sawElse {
			return hard(diag.SynDanglingElse, hash.Span, "#%s after #else", nameTok.Text)
		}
		pp.touch()
		if nameTok.Text == "else" {
			f.sawElse = true
			f.branch(nil)
		} else {
			e, err := pp.condExpr(body, nameTok)
			if err != nil {
				return err
			}
			f.branch(e)
		}
		pp.recompute()
		return nil
	case "endif":
		if len(pp.frames) == 0 {
			return hard(diag.SynDanglingEndif, hash.Span, "#endif without #if")
		}
		pp.frames = pp.frames[:len(pp.frames)-1]
		pp.touch()
		pp.recompute()
		return nil
	}

	if !pp.active() {
		return nil
	}

	info := ast.DeclInfo{Module: pp.module, Doc: leadingDoc(hash), Cond: pp.cond, Span: lineSpan}
	switch nameTok.Text {
	case "define":
		d, err := parseDefine(body, info, next)
		if err != nil {
			return err
		}
		if def, ok := d.(*ast.Define); ok {
			if f := pp.top(); f != nil && f.maybeGuard == def.Name.Name && def.Value == nil && !def.FuncLike {
				f.guard = true
				f.maybeGuard = ""
				pp.recompute()
				return nil
			}
		}
		pp.touch()
		pp.anchor(d)
	case "include":
		pp.touch()
		pp.anchor(parseInclude(body, info))
	default:
		pp.touch()
		pp.anchor(&ast.Skipped{DeclInfo: info, Reason: "#" + nameTok.Text})
	}
	return nil
}

func (pp *preprocessor) top() *condFrame {
	if n := len(pp.frames); n > 0 {
		return pp.frames[n-1]
	}
	return nil
}

func (pp *preprocessor) push(open token.Token, e ast.Expr, guard string) {
	f := &condFrame{open: open, outer: pp.active(), maybeGuard: guard}
	f.branch(e)
	pp.frames = append(pp.frames, f)
	pp.recompute()
}

// condExpr parses an #if/#elif condition. Conditions outside the constant
// expression grammar are kept as an opaque identifier.
func (pp *preprocessor) condExpr(body Input, dir token.Token) (ast.Expr, error) {
	if body.AtEOF() {
		return nil, hard(diag.SynBadDirective, dir.Span, "#%s without a condition", dir.Text)
	}
	rest, e, err := ValueExpr(body)
	if err == nil && e != nil && rest.AtEOF() {
		return e, nil
	}
	if isLiteralError(err) {
		return nil, err
	}
	sp := body.Peek().Span.Cover(body.lastSpan())
	return &ast.Ident{Name: strings.TrimSpace(body.text()), Span: sp}, nil
}

// branch enters the next branch of the frame. e == nil is #else.
func (f *condFrame) branch(e ast.Expr) {
	var neg ast.Cond
	for _, p := range f.prior {
		neg = append(neg, negate(p))
	}
	if !f.outer || f.taken {
		f.active = false
		f.cond = nil
		return
	}
	if e == nil {
		f.active = true
		f.cond = neg
		return
	}
	reduced, val, known := simplify(e)
	switch {
	case known && val:
		f.active, f.taken = true, true
		f.cond = neg
	case known:
		f.active = false
		f.cond = nil
	default:
		f.active = true
		f.cond = neg.And(reduced)
		f.prior = append(f.prior, reduced)
	}
}

func negate(e ast.Expr) ast.Expr {
	if u, ok := e.(*ast.UnaryExpr); ok && u.Op == ast.ExprUnaryNot {
		return stripParen(u.X)
	}
	x := e
	if _, bin := e.(*ast.BinaryExpr); bin {
		x = &ast.ParenExpr{X: e, Span: e.ExprSpan()}
	}
	return &ast.UnaryExpr{Op: ast.ExprUnaryNot, X: x, Span: e.ExprSpan()}
}

func stripParen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// simplify folds the parts of a condition whose value is known statically.
// It returns the reduced expression, and the value when fully known.
func simplify(e ast.Expr) (ast.Expr, bool, bool) {
	switch x := e.(type) {
	case *ast.Literal:
		if x.Kind == ast.LitInt || x.Kind == ast.LitChar {
			return x, x.Int != 0, true
		}
	case *ast.DefinedExpr:
		if knownFalse[x.Name.Name] {
			return x, false, true
		}
	case *ast.Ident:
		if knownFalse[x.Name] {
			return x, false, true
		}
	case *ast.ParenExpr:
		inner, v, known := simplify(x.X)
		if known {
			return x, v, true
		}
		if inner != x.X {
			return &ast.ParenExpr{X: inner, Span: x.Span}, false, false
		}
	case *ast.UnaryExpr:
		if x.Op != ast.ExprUnaryNot {
			break
		}
		inner, v, known := simplify(x.X)
		if known {
			return x, !v, true
		}
		if inner != x.X {
			return &ast.UnaryExpr{Op: x.Op, X: inner, Span: x.Span}, false, false
		}
	case *ast.BinaryExpr:
		if x.Op != ast.ExprBinaryLogicalAnd && x.Op != ast.ExprBinaryLogicalOr {
			break
		}
		l, lv, lk := simplify(x.X)
		r, rv, rk := simplify(x.Y)
		and := x.Op == ast.ExprBinaryLogicalAnd
		switch {
		case lk && rk:
			if and {
				return x, lv && rv, true
			}
			return x, lv || rv, true
		case lk:
			if lv != and {
				// false && y, true || y
				return x, lv, true
			}
			return r, false, false
		case rk:
			if rv != and {
				return x, rv, true
			}
			return l, false, false
		}
		if l != x.X || r != x.Y {
			return &ast.BinaryExpr{Op: x.Op, X: l, Y: r, Span: x.Span}, false, false
		}
	}
	return e, false, false
}

func isLiteralError(err error) bool {
	d, ok := err.(diag.Diagnostic)
	return ok && (d.Code == diag.SynBadLiteral || d.Code == diag.SynBadLiteralSuffix)
}

// parseDefine parses the body of "#define". Macros whose replacement list is
// not a constant expression become Skipped.
func parseDefine(body Input, info ast.DeclInfo, next token.Token) (ast.Decl, error) {
	nameTok := body.Peek()
	if nameTok.Kind != token.Ident {
		return nil, hard(diag.SynBadDirective, nameTok.Span, "#define expects a macro name, found %s", describe(nameTok))
	}
	def := &ast.Define{DeclInfo: info, Name: ast.Ident{Name: nameTok.Text, Span: nameTok.Span}}
	def.Trailing = trailingDoc(next)
	in := body.Advance()

	if in.At(token.LParen) && in.Peek().Span.Start == nameTok.Span.End {
		def.FuncLike = true
		in = in.Advance()
		for !in.At(token.RParen) {
			tok := in.Peek()
			switch tok.Kind {
			case token.Ident:
				def.Params = append(def.Params, ast.Ident{Name: tok.Text, Span: tok.Span})
			case token.Ellipsis:
				return &ast.Skipped{DeclInfo: info, Reason: "variadic macro " + nameTok.Text}, nil
			case token.Comma:
			default:
				return nil, hard(diag.SynBadDirective, tok.Span, "malformed parameter list of macro %s", nameTok.Text)
			}
			in = in.Advance()
		}
		in = in.Advance()
	}

	if in.AtEOF() {
		return def, nil
	}
	rest, v, err := ValueExpr(in)
	if isLiteralError(err) {
		return nil, err
	}
	if err != nil || v == nil || !rest.AtEOF() {
		return &ast.Skipped{DeclInfo: info, Reason: "macro " + nameTok.Text + " is not a constant expression"}, nil
	}
	def.Value = v
	return def, nil
}

func parseInclude(body Input, info ast.DeclInfo) ast.Decl {
	tok := body.Peek()
	switch tok.Kind {
	case token.StringLit:
		if _, lit, err := Literal(body); err == nil && lit != nil {
			return &ast.Include{DeclInfo: info, Path: lit.Str}
		}
	case token.Lt:
		var b strings.Builder
		in := body.Advance()
		for !in.AtEOF() && !in.At(token.Gt) {
			b.WriteString(in.Peek().Text)
			in = in.Advance()
		}
		if in.At(token.Gt) {
			return &ast.Include{DeclInfo: info, Path: b.String(), System: true}
		}
	}
	return &ast.Skipped{DeclInfo: info, Reason: "#include"}
}
