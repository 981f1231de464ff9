package emit

import (
	"fmt"
	"go/build/constraint"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/model"
)

// goFile accumulates the declarations of one generated file.
type goFile struct {
	path string
	gate constraint.Expr
	buf  strings.Builder
	// binds lists C function names and their Go variables, for init.
	binds [][2]string
}

// moduleFiles routes the items of a module to files by build gate.
type moduleFiles struct {
	mod    *model.Module
	base   string
	files  []*goFile
	byGate map[string]*goFile
}

func (mf *moduleFiles) file(gate constraint.Expr) *goFile {
	key := gateKey(gate)
	if f, ok := mf.byGate[key]; ok {
		return f
	}
	path := mf.base + ".go"
	if gate != nil {
		path = fmt.Sprintf("%s_gated_%d.go", mf.base, len(mf.files))
	}
	f := &goFile{path: path, gate: gate}
	mf.byGate[key] = f
	mf.files = append(mf.files, f)
	return f
}

func (e *Emitter) emitModule(mod *model.Module) error {
	mf := &moduleFiles{mod: mod, base: goFileName(mod.Name), byGate: make(map[string]*goFile)}
	mf.file(nil)
	for _, it := range mod.Items {
		if err := e.emitItem(mf, it); err != nil {
			return err
		}
	}
	for _, f := range mf.files {
		var b strings.Builder
		e.header(&b, mod.Header, f.gate)
		if f.gate == nil && mod.Doc != "" {
			writeDoc(&b, "", e.docs.render(mod.Doc, nil))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "package %s\n\n", e.opts.Package)
		body := f.buf.String()
		if strings.Contains(body, "unsafe.") {
			b.WriteString("import \"unsafe\"\n\n")
		}
		b.WriteString(body)
		if len(f.binds) > 0 {
			b.WriteString("func init() {\n\tsymbols = append(symbols,\n")
			for _, bind := range f.binds {
				fmt.Fprintf(&b, "\t\tsymbol{%q, &%s},\n", bind[0], bind[1])
			}
			b.WriteString("\t)\n}\n")
		}
		if err := e.addFile(f.path, []byte(b.String())); err != nil {
			return err
		}
	}
	return nil
}

// itemError ties an emission failure to its module and declaration.
func itemError(mod *model.Module, it model.Item, err error) error {
	if d, ok := err.(diag.Diagnostic); ok {
		d.Message = fmt.Sprintf("module %s, %s: %s", mod.Name, it.CName(), d.Message)
		return d.WithNote(it.Prov().Span, "declared here")
	}
	return err
}

func (e *Emitter) emitItem(mf *moduleFiles, it model.Item) error {
	goName, named := e.goNames[it]
	if !named {
		// fixed-width aliases and functions purego cannot bind
		return nil
	}
	f := mf.file(gateOf(it.Prov(), e.opts.Baseline))
	var err error
	switch x := it.(type) {
	case *model.Group:
		err = e.emitGroup(mf, f, x, goName)
	case *model.Struct:
		err = e.emitStruct(f, x, goName)
	case *model.Alias:
		err = e.emitAlias(f, x, goName)
	case *model.Callback:
		e.writeDoc(&f.buf, &x.Provenance)
		fmt.Fprintf(&f.buf, "type %s uintptr\n\n", goName)
	case *model.Function:
		err = e.emitFunction(f, x, goName)
	case *model.Constant:
		err = e.emitConstant(f, x, goName)
	case *model.Property:
		e.writeDoc(&f.buf, &x.Provenance)
		fmt.Fprintf(&f.buf, "const %s = %q\n\n", goName, x.Key)
	case *model.Hint:
		e.writeDoc(&f.buf, &x.Provenance)
		fmt.Fprintf(&f.buf, "const %s = %q\n\n", goName, x.Key)
	}
	if err != nil {
		return itemError(mf.mod, it, err)
	}
	return nil
}

func (e *Emitter) writeDoc(b *strings.Builder, p *model.Provenance) {
	writeDoc(b, "", e.docs.render(p.Doc, p.Since))
}

func (e *Emitter) emitGroup(mf *moduleFiles, f *goFile, g *model.Group, goName string) error {
	base, err := e.types.goType(g.Base, posField)
	if err != nil {
		return err
	}
	e.writeDoc(&f.buf, &g.Provenance)
	fmt.Fprintf(&f.buf, "type %s %s\n\n", goName, base)
	if g.Kind == model.GroupFlags {
		fmt.Fprintf(&f.buf, "// Has reports whether every flag of mask is set.\n")
		fmt.Fprintf(&f.buf, "func (f %s) Has(mask %s) bool { return f&mask == mask }\n\n", goName, goName)
		fmt.Fprintf(&f.buf, "// With returns f with the flags of mask set.\n")
		fmt.Fprintf(&f.buf, "func (f %s) With(mask %s) %s { return f | mask }\n\n", goName, goName, goName)
		fmt.Fprintf(&f.buf, "// Without returns f with the flags of mask cleared.\n")
		fmt.Fprintf(&f.buf, "func (f %s) Without(mask %s) %s { return f &^ mask }\n\n", goName, goName, goName)
	}

	// values under their own condition or version go to that gate's file
	var order []*goFile
	blocks := make(map[*goFile][]*model.GroupValue)
	for _, v := range g.Values {
		vf := mf.file(gateOf(&v.Provenance, e.opts.Baseline))
		if _, ok := blocks[vf]; !ok {
			order = append(order, vf)
		}
		blocks[vf] = append(blocks[vf], v)
	}
	for _, vf := range order {
		vf.buf.WriteString("const (\n")
		for _, v := range blocks[vf] {
			if v.Value.Kind != model.ValueInt {
				return diag.NewError(diag.EmtIncompleteValue, v.Span,
					fmt.Sprintf("group value %s has no integer value", v.Name))
			}
			writeDoc(&vf.buf, "\t", e.docs.render(v.Doc, valueSince(g, v)))
			fmt.Fprintf(&vf.buf, "\t%s %s = %s\n", e.goNames[v], goName, v.Value.Literal())
		}
		vf.buf.WriteString(")\n\n")
	}
	return nil
}

// valueSince reports a value's version only when it differs from its group.
func valueSince(g *model.Group, v *model.GroupValue) *ast.Version {
	if v.Since == nil || (g.Since != nil && v.Since.Compare(*g.Since) == 0) {
		return nil
	}
	return v.Since
}

func (e *Emitter) emitAlias(f *goFile, a *model.Alias, goName string) error {
	target, err := e.types.goType(a.Type, posField)
	if err != nil {
		return err
	}
	e.writeDoc(&f.buf, &a.Provenance)
	op := " "
	if n, ok := a.Type.(*ast.NamedType); ok {
		if _, isStruct := e.lookup(n).(*model.Struct); isStruct {
			// keep the methods of unions
			op = " = "
		}
	}
	fmt.Fprintf(&f.buf, "type %s%s%s\n\n", goName, op, target)
	return nil
}

func (e *Emitter) lookup(n *ast.NamedType) model.Item {
	it, _ := e.m.LookupType(n)
	return it
}

func (e *Emitter) emitConstant(f *goFile, c *model.Constant, goName string) error {
	if c.Value.Kind == model.ValueNone {
		return diag.NewError(diag.EmtIncompleteValue, c.Span, fmt.Sprintf("constant %s has no value", c.Name))
	}
	typ := ""
	if c.Type != nil && c.Value.Kind != model.ValueString {
		if t, err := e.types.goType(c.Type, posField); err == nil && e.constType(c.Type, t) {
			typ = " " + t
		}
	}
	e.writeDoc(&f.buf, &c.Provenance)
	fmt.Fprintf(&f.buf, "const %s%s = %s\n\n", goName, typ, c.Value.Literal())
	return nil
}

// constType reports Go types a constant can be declared with.
func (e *Emitter) constType(t ast.Type, goType string) bool {
	if numericGo[goType] {
		return true
	}
	n, ok := t.(*ast.NamedType)
	if !ok {
		return false
	}
	_, group := e.lookup(n).(*model.Group)
	return group
}

func (e *Emitter) emitFunction(f *goFile, fn *model.Function, goName string) error {
	var params []string
	for i, p := range fn.Type.Params {
		if len(fn.Type.Params) == 1 && ast.IsVoid(p.Type) {
			break
		}
		t, err := e.types.goType(p.Type, posParam)
		if err != nil {
			return err
		}
		name := ""
		if p.Name != nil {
			name = p.Name.Name
		}
		params = append(params, paramName(name, i)+" "+t)
	}
	result := ""
	if !isVoid(fn.Type.Result) {
		t, err := e.types.goType(fn.Type.Result, posResult)
		if err != nil {
			return err
		}
		result = " " + t
	}
	e.writeDoc(&f.buf, &fn.Provenance)
	fmt.Fprintf(&f.buf, "var %s func(%s)%s\n\n", goName, strings.Join(params, ", "), result)
	f.binds = append(f.binds, [2]string{fn.Name, goName})
	return nil
}
