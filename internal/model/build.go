package model

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/layout"
	"sdl3gen/internal/source"
)

// flagTypes are group types whose values combine although their name does
// not end in Flags.
var flagTypes = map[string]bool{
	"SDL_Keymod": true,
}

// Build derives the model of a run from its parsed and patched headers.
// Modules are sorted by name; items keep header order. The first error
// aborts the build.
func Build(files []*ast.File) (*Model, error) {
	files = slices.Clone(files)
	slices.SortStableFunc(files, func(a, b *ast.File) int { return strings.Compare(a.Module, b.Module) })
	for i := 1; i < len(files); i++ {
		if files[i].Module == files[i-1].Module {
			return nil, diag.NewError(diag.ModDuplicateDecl, source.Nowhere,
				fmt.Sprintf("module %s is declared by both %s and %s", files[i].Module, files[i-1].Path, files[i].Path))
		}
	}

	s := newSymbols()
	s.index(files)
	m := &Model{syms: s}
	for _, f := range files {
		b := newModuleBuilder(s, f)
		if err := b.build(); err != nil {
			return nil, err
		}
		m.Modules = append(m.Modules, b.mod)
	}
	if err := m.resolve(); err != nil {
		return nil, err
	}
	m.Layout = layout.New(layout.X86_64LinuxGNU(), layoutTypes{m})
	if err := m.computeLayouts(); err != nil {
		return nil, err
	}
	return m, nil
}

type moduleBuilder struct {
	s    *symbols
	file *ast.File
	mod  *Module

	// casts holds the top-level cast targets of the module's defines.
	casts map[string]bool
	// open is the typedef group collecting the defines that follow it.
	open *Group
}

func newModuleBuilder(s *symbols, f *ast.File) *moduleBuilder {
	b := &moduleBuilder{
		s:    s,
		file: f,
		mod: &Module{
			Name:    f.Module,
			Library: f.Library,
			Header:  filepath.Base(f.Path),
			Doc:     docText(f.Doc),
		},
		casts: make(map[string]bool),
	}
	for _, d := range f.Defines() {
		if d.FuncLike || d.Value == nil {
			continue
		}
		if c, ok := stripParens(d.Value).(*ast.CastExpr); ok {
			if n, ok := c.Type.(*ast.NamedType); ok && n.Tag == ast.TagNone {
				b.casts[n.Name] = true
			}
		}
	}
	return b
}

func (b *moduleBuilder) build() error {
	for _, d := range b.file.Decls {
		var err error
		switch x := d.(type) {
		case *ast.Define:
			err = b.define(x)
		case *ast.Include, *ast.Skipped:
		case *ast.Typedef:
			b.open = nil
			err = b.typedef(x)
		case *ast.RecordDecl:
			b.open = nil
			err = b.record(x)
		case *ast.EnumDecl:
			b.open = nil
			err = b.enum(x)
		case *ast.FuncDecl:
			b.open = nil
			err = b.function(x)
		}
		if err != nil {
			return err
		}
	}
	for _, g := range b.mod.Groups() {
		assignShortNames(g)
		if err := checkShortNames(g); err != nil {
			return err
		}
	}
	return nil
}

func (b *moduleBuilder) add(it Item) { b.mod.Items = append(b.mod.Items, it) }

func provenance(info *ast.DeclInfo) Provenance {
	return Provenance{
		Module: info.Module,
		Doc:    docText(info.Doc),
		Since:  info.Since(),
		Cond:   info.Cond,
		Span:   info.Span,
	}
}

func docText(d *ast.Doc) string {
	if d == nil {
		return ""
	}
	return d.Text
}

// declare claims a top-level name. A second declaration under the same
// condition is an error; differing conditions select alternatives.
func (b *moduleBuilder) declare(name string, p *Provenance, code diag.Code) error {
	prev, ok := b.s.decls[name]
	if !ok {
		b.s.decls[name] = p
		return nil
	}
	if prev.Cond.String() != p.Cond.String() {
		return nil
	}
	return diag.NewError(code, p.Span, fmt.Sprintf("%s is already declared", name)).
		WithNote(prev.Span, "previous declaration")
}

func (b *moduleBuilder) define(d *ast.Define) error {
	if d.FuncLike || d.Value == nil {
		return nil
	}
	name := d.Name.Name
	if refersToReserved(d.Value) {
		return nil
	}
	switch {
	case strings.HasPrefix(name, "SDL_PROP_"):
		return b.property(d)
	case strings.HasPrefix(name, "SDL_HINT_"):
		return b.hint(d)
	}

	if id, ok := d.Value.(*ast.Ident); ok {
		switch {
		case b.s.typeNames[id.Name] || fixedWidth[id.Name] != "":
			a := &Alias{Provenance: provenance(&d.DeclInfo), Name: name, Type: ast.Named(id.Name, id.Span)}
			if err := b.declare(name, &a.Provenance, diag.ModDuplicateDecl); err != nil {
				return err
			}
			b.s.register(name, a)
			b.add(a)
			return nil
		case b.s.funcs[id.Name]:
			return nil
		case cLibrarySymbols[id.Name]:
			return nil
		}
	}

	expr, err := b.s.expand(d.Value)
	if err != nil {
		return err
	}
	prov := provenance(&d.DeclInfo)
	if d.Trailing != nil && prov.Doc == "" {
		prov.Doc = d.Trailing.Text
	}

	entry := &valueEntry{name: name, expr: expr, span: d.Span}
	if g := b.claim(d); g != nil {
		if err := b.addValue(g, &GroupValue{Provenance: prov, Name: name, Expr: expr, entry: entry}); err != nil {
			return err
		}
		b.s.addValue(entry)
		return nil
	}

	c := &Constant{Provenance: prov, Name: name, Expr: expr, entry: entry}
	if cast, ok := stripParens(expr).(*ast.CastExpr); ok {
		c.Type = cast.Type
	}
	if err := b.declare(name, &c.Provenance, diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.s.addValue(entry)
	b.add(c)
	return nil
}

// claim returns the group a define belongs to: the group its value is cast
// to, else the open typedef group when the name carries its prefix.
func (b *moduleBuilder) claim(d *ast.Define) *Group {
	if c, ok := stripParens(d.Value).(*ast.CastExpr); ok {
		if n, ok := c.Type.(*ast.NamedType); ok && n.Tag == ast.TagNone {
			if g, ok := b.s.types[n.Name].(*Group); ok && g.Module == b.mod.Name && b.isTypedefGroup(g) {
				return g
			}
		}
	}
	if b.open != nil && matchesPrefix(d.Name.Name, valuePrefix(b.open.Name)) {
		return b.open
	}
	return nil
}

func (b *moduleBuilder) isTypedefGroup(g *Group) bool {
	_, ok := b.s.typedefs[g.Name]
	return ok
}

func (b *moduleBuilder) addValue(g *Group, v *GroupValue) error {
	if v.Since == nil {
		v.Since = g.Since
	}
	if err := b.declare(v.Name, &v.Provenance, diag.ModDuplicateValue); err != nil {
		return err
	}
	g.Values = append(g.Values, v)
	return nil
}

func (b *moduleBuilder) property(d *ast.Define) error {
	name := d.Name.Name
	lit, ok := d.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return diag.NewError(diag.ModBadProperty, d.Value.ExprSpan(), fmt.Sprintf("property %s is not a string literal", name))
	}
	typ, ok := propertyType(name)
	if !ok {
		return diag.NewError(diag.ModBadProperty, d.Name.Span, fmt.Sprintf("property %s has no type suffix", name))
	}
	p := &Property{
		Provenance: provenance(&d.DeclInfo),
		Name:       name,
		Short:      shortName(name, "SDL_PROP_", propertySuffixes[typ]),
		Key:        lit.Str,
		Type:       typ,
	}
	if err := b.declare(name, &p.Provenance, diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.s.addValue(&valueEntry{name: name, expr: lit, span: d.Span})
	b.add(p)
	return nil
}

func propertyType(name string) (PropertyType, bool) {
	for t, suffix := range propertySuffixes {
		if strings.HasSuffix(name, suffix) {
			return PropertyType(t), true
		}
	}
	return 0, false
}

func (b *moduleBuilder) hint(d *ast.Define) error {
	name := d.Name.Name
	lit, ok := d.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return diag.NewError(diag.ModBadProperty, d.Value.ExprSpan(), fmt.Sprintf("hint %s is not a string literal", name))
	}
	h := &Hint{
		Provenance: provenance(&d.DeclInfo),
		Name:       name,
		Short:      shortName(name, "SDL_HINT_"),
		Key:        lit.Str,
	}
	if err := b.declare(name, &h.Provenance, diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.s.addValue(&valueEntry{name: name, expr: lit, span: d.Span})
	b.add(h)
	return nil
}

// groupKind classifies an integer typedef; ok is false for plain aliases.
func (b *moduleBuilder) groupKind(name string) (GroupKind, bool) {
	switch {
	case strings.HasSuffix(name, "Flags"), flagTypes[name]:
		return GroupFlags, true
	case strings.HasSuffix(name, "ID"):
		return GroupId, true
	case strings.HasSuffix(name, "SpinLock"):
		return GroupLock, true
	case libraryPrefix(name) != "" && b.casts[name]:
		return GroupEnum, true
	}
	return 0, false
}

func (b *moduleBuilder) typedef(t *ast.Typedef) error {
	name := t.Name.Name
	prov := provenance(&t.DeclInfo)

	var it Item
	switch x := t.Type.(type) {
	case *ast.PointerType:
		if ft, ok := x.Elem.(*ast.FuncType); ok {
			it = &Callback{Provenance: prov, Name: name, Type: ft}
		}
	case *ast.NamedType:
		if x.Tag == ast.TagNone && b.s.isInteger(x.Name) {
			if kind, ok := b.groupKind(name); ok {
				g := &Group{Provenance: prov, Name: name, Kind: kind, Base: x}
				if err := b.declare(name, &g.Provenance, diag.ModDuplicateGroup); err != nil {
					return err
				}
				b.s.register(name, g)
				b.add(g)
				b.open = g
				return nil
			}
		}
	}
	if it == nil {
		it = &Alias{Provenance: prov, Name: name, Type: t.Type}
	}
	if err := b.declare(name, it.Prov(), diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.s.register(name, it)
	b.add(it)
	return nil
}

func (b *moduleBuilder) enum(e *ast.EnumDecl) error {
	prov := provenance(&e.DeclInfo)
	if e.Typedef == nil && e.Tag == nil {
		return b.anonymousEnum(e, prov)
	}
	name := e.Name()
	g := &Group{Provenance: prov, Name: name, Kind: GroupEnum, Base: ast.Named("int", e.Span)}
	if err := b.declare(name, &g.Provenance, diag.ModDuplicateGroup); err != nil {
		return err
	}
	b.s.register(name, g)
	if e.Tag != nil {
		b.s.register("enum "+e.Tag.Name, g)
	}

	var prev *valueEntry
	for _, v := range e.Values {
		gv := &GroupValue{Provenance: enumValueProvenance(prov, v), Name: v.Name.Name}
		if v.Value != nil {
			x, err := b.s.expand(v.Value)
			if err != nil {
				return err
			}
			gv.Expr = x
		}
		entry := &valueEntry{name: gv.Name, expr: gv.Expr, prev: prev, span: v.Span}
		gv.entry = entry
		b.s.addValue(entry)
		prev = entry
		if err := b.addValue(g, gv); err != nil {
			return err
		}
	}
	b.add(g)
	return nil
}

func enumValueProvenance(decl Provenance, v *ast.EnumValue) Provenance {
	p := Provenance{Module: decl.Module, Doc: docText(v.Doc), Since: decl.Since, Cond: decl.Cond, Span: v.Span}
	if v.Doc != nil && v.Doc.Since != nil {
		p.Since = v.Doc.Since
	}
	for _, c := range v.Cond {
		p.Cond = p.Cond.And(c)
	}
	return p
}

// anonymousEnum contributes its values as plain int constants.
func (b *moduleBuilder) anonymousEnum(e *ast.EnumDecl, prov Provenance) error {
	var prev *valueEntry
	for _, v := range e.Values {
		c := &Constant{Provenance: enumValueProvenance(prov, v), Name: v.Name.Name}
		if v.Value != nil {
			x, err := b.s.expand(v.Value)
			if err != nil {
				return err
			}
			c.Expr = x
		}
		if err := b.declare(c.Name, &c.Provenance, diag.ModDuplicateDecl); err != nil {
			return err
		}
		entry := &valueEntry{name: c.Name, expr: c.Expr, prev: prev, span: v.Span}
		c.entry = entry
		b.s.addValue(entry)
		prev = entry
		b.add(c)
	}
	return nil
}

func recordKey(r *ast.RecordDecl) string {
	if r.Tag == nil {
		return ""
	}
	if r.Kind == ast.RecordUnion {
		return "union " + r.Tag.Name
	}
	return "struct " + r.Tag.Name
}

func (b *moduleBuilder) record(r *ast.RecordDecl) error {
	key := recordKey(r)
	if key != "" {
		if prev, ok := b.s.types[key].(*Struct); ok {
			return b.mergeRecord(prev, r)
		}
	}
	if r.Typedef != nil {
		if prev, ok := b.s.types[r.Typedef.Name].(*Struct); ok && (prev.Opaque || r.Opaque) {
			return b.mergeRecord(prev, r)
		}
	}

	st, err := b.structOf(r, r.Name(), provenance(&r.DeclInfo))
	if err != nil {
		return err
	}
	if err := b.declare(st.Name, &st.Provenance, diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.s.register(st.Name, st)
	if key != "" {
		b.s.register(key, st)
	}
	b.add(st)
	return nil
}

// mergeRecord joins a forward declaration and the definition of one record.
func (b *moduleBuilder) mergeRecord(prev *Struct, r *ast.RecordDecl) error {
	if r.Typedef != nil {
		b.s.register(r.Typedef.Name, prev)
	}
	if key := recordKey(r); key != "" {
		b.s.register(key, prev)
	}
	if r.Opaque {
		return nil
	}
	if !prev.Opaque {
		p := provenance(&r.DeclInfo)
		if prev.Cond.String() != p.Cond.String() {
			return nil
		}
		return diag.NewError(diag.ModDuplicateDecl, r.Span, fmt.Sprintf("%s is already defined", prev.Name)).
			WithNote(prev.Span, "previous definition")
	}
	full, err := b.structOf(r, prev.Name, prev.Provenance)
	if err != nil {
		return err
	}
	if prev.Doc == "" {
		prev.Doc = docText(r.Doc)
	}
	if prev.Since == nil {
		prev.Since = r.Since()
	}
	prev.Opaque = false
	prev.Fields = full.Fields
	return nil
}

func (b *moduleBuilder) structOf(r *ast.RecordDecl, name string, prov Provenance) (*Struct, error) {
	st := &Struct{
		Provenance: prov,
		Name:       name,
		Tag:        r.Tag.String(),
		Union:      r.Kind == ast.RecordUnion,
		Opaque:     r.Opaque,
	}
	var nested *Struct
	for i, f := range r.Fields {
		fd := &Field{
			Type:  f.Type,
			Doc:   docText(f.Doc),
			Since: st.Since,
			Cond:  f.Cond,
			Span:  f.Span,
		}
		if f.Name != nil {
			fd.Name = f.Name.Name
		}
		if f.Doc != nil && f.Doc.Since != nil {
			fd.Since = f.Doc.Since
		}
		if f.Record != nil {
			// declarators after one body share it
			if i == 0 || r.Fields[i-1].Record != f.Record {
				sub := fd.Name
				if sub == "" {
					sub = strconv.Itoa(i)
				}
				subName := name + "_" + sub
				if f.Record.Tag != nil {
					subName = f.Record.Tag.Name
				}
				var err error
				nested, err = b.structOf(f.Record, subName, Provenance{Module: prov.Module, Doc: fd.Doc, Since: fd.Since, Cond: f.Cond, Span: f.Record.Span})
				if err != nil {
					return nil, err
				}
				b.s.register(subName, nested)
				if key := recordKey(f.Record); key != "" {
					b.s.register(key, nested)
				}
			}
			fd.Record = nested
			if f.Record.Tag == nil {
				fd.Type = replaceBase(f.Type, ast.Named(nested.Name, f.Record.Span))
			}
		}
		if f.Bits != nil {
			fd.bits = f.Bits
		}
		fd.CType = fd.Type.String()
		st.Fields = append(st.Fields, fd)
	}
	return st, nil
}

// replaceBase swaps the named type at the bottom of t.
func replaceBase(t ast.Type, n *ast.NamedType) ast.Type {
	switch x := t.(type) {
	case *ast.PointerType:
		return &ast.PointerType{Elem: replaceBase(x.Elem, n), Const: x.Const, Span: x.Span}
	case *ast.ArrayType:
		return &ast.ArrayType{Elem: replaceBase(x.Elem, n), Len: x.Len, Span: x.Span}
	}
	return n
}

func (b *moduleBuilder) function(f *ast.FuncDecl) error {
	if f.Inline {
		return nil
	}
	fn := &Function{Provenance: provenance(&f.DeclInfo), Name: f.Name.Name, Type: f.Type, Attrs: f.Attrs}
	if err := b.declare(fn.Name, &fn.Provenance, diag.ModDuplicateDecl); err != nil {
		return err
	}
	b.add(fn)
	return nil
}

func checkShortNames(g *Group) error {
	seen := make(map[string]*GroupValue, len(g.Values))
	for _, v := range g.Values {
		key := v.Short + "\x00" + v.Cond.String()
		if prev, ok := seen[key]; ok {
			return diag.NewError(diag.ModDuplicateValue, v.Span,
				fmt.Sprintf("%s and %s share the short name %s in %s", prev.Name, v.Name, v.Short, g.Name)).
				WithNote(prev.Span, "first value")
		}
		seen[key] = v
	}
	return nil
}

// refersToReserved reports values built from compiler-reserved names.
func refersToReserved(e ast.Expr) bool {
	found := false
	ast.Idents(e, func(id *ast.Ident) {
		if strings.HasPrefix(id.Name, "__") {
			found = true
		}
	})
	return found
}

func stripParens(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
