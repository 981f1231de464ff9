// Package emit renders a model as Go bindings loaded with purego: one file
// per module, build-gated files for conditional declarations, an
// aggregation file with the symbol table, and a metadata sub-package.
package emit

import (
	"fmt"
	"go/build/constraint"
	"go/format"
	"slices"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/model"
	"sdl3gen/internal/source"
)

var noSpan = source.Nowhere

// Options control the generated package.
type Options struct {
	// Package is the name of the generated package.
	Package string
	// Baseline is the oldest library version the bindings target; newer
	// declarations are gated behind sdl_X_Y_Z build tags.
	Baseline ast.Version
	// Revision is recorded in the aggregation file when set.
	Revision string
	// Generator names the tool in the "Code generated" banner.
	Generator string
	// NoMetadata skips the metadata sub-package.
	NoMetadata bool
}

// DefaultOptions returns the options used by the sdl3gen command.
func DefaultOptions() Options {
	return Options{
		Package:   "sdl",
		Baseline:  ast.Version{Major: 3, Minor: 2, Patch: 0},
		Generator: "sdl3gen",
	}
}

// File is one generated file, Path relative to the output directory.
type File struct {
	Path string
	Data []byte
}

// Output is the complete result of a run. Nothing is written until Commit.
type Output struct {
	Files []File
}

// File returns the generated file at path.
func (o *Output) File(path string) (File, bool) {
	for _, f := range o.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// Emitter holds the state of one emission.
type Emitter struct {
	m     *model.Model
	opts  Options
	scope *nameTable
	types *typeMapper
	// goNames maps every emitted declaration (type items, functions,
	// constants, group values, properties, hints) to its Go name.
	goNames map[any]string
	docs    docRenderer
	out     Output
}

// Emit renders m. The first error aborts the run with no output.
func Emit(m *model.Model, opts Options) (*Output, error) {
	def := DefaultOptions()
	if opts.Package == "" {
		opts.Package = def.Package
	}
	if opts.Baseline == (ast.Version{}) {
		opts.Baseline = def.Baseline
	}
	if opts.Generator == "" {
		opts.Generator = def.Generator
	}
	e := &Emitter{
		m:       m,
		opts:    opts,
		scope:   newNameTable(),
		goNames: make(map[any]string, 4096),
		docs:    docRenderer{links: make(map[string]string, 4096)},
	}
	e.types = &typeMapper{m: m, names: make(map[model.Item]string, 1024)}
	if err := e.assignNames(); err != nil {
		return nil, err
	}
	for _, mod := range m.Modules {
		if err := e.emitModule(mod); err != nil {
			return nil, err
		}
	}
	if err := e.emitAggregate(); err != nil {
		return nil, err
	}
	if err := e.emitLayoutChecks(); err != nil {
		return nil, err
	}
	if !opts.NoMetadata {
		if err := e.emitMetadata(); err != nil {
			return nil, err
		}
	}
	slices.SortFunc(e.out.Files, func(a, b File) int { return strings.Compare(a.Path, b.Path) })
	return &e.out, nil
}

// reserved are the identifiers of the aggregation file.
var reserved = []string{"Bind", "Modules", "Revision", "symbol", "symbols", "bindSymbol"}

// assignNames gives every declaration its Go name before any code is
// written, so references resolve regardless of module order.
func (e *Emitter) assignNames() error {
	for _, name := range reserved {
		if err := e.scope.claim(name, "", e.opts.Package, ""); err != nil {
			return err
		}
	}
	for _, mod := range e.m.Modules {
		for _, it := range mod.Items {
			if err := e.nameItem(mod, it); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Emitter) name(key any, goName, cname string, mod *model.Module, p *model.Provenance) error {
	if err := e.scope.claim(goName, cname, mod.Name, gateKey(gateOf(p, e.opts.Baseline))); err != nil {
		return err
	}
	e.goNames[key] = goName
	if _, ok := e.docs.links[cname]; !ok {
		e.docs.links[cname] = goName
	}
	return nil
}

func (e *Emitter) nameType(it model.Item, goName string, mod *model.Module) error {
	if err := e.name(it, goName, it.CName(), mod, it.Prov()); err != nil {
		return err
	}
	e.types.names[it] = goName
	return nil
}

func (e *Emitter) nameItem(mod *model.Module, it model.Item) error {
	switch x := it.(type) {
	case *model.Group:
		goName := typeName(x.Name)
		if err := e.nameType(x, goName, mod); err != nil {
			return err
		}
		for _, v := range x.Values {
			if err := e.name(v, valueName(x, goName, v), v.Name, mod, &v.Provenance); err != nil {
				return err
			}
		}
	case *model.Struct:
		return e.nameStruct(mod, x, typeName(x.Name))
	case *model.Alias:
		if _, ok := model.FixedWidth(x.Name); ok {
			return nil
		}
		return e.nameType(x, typeName(x.Name), mod)
	case *model.Callback:
		return e.nameType(x, typeName(x.Name), mod)
	case *model.Function:
		if !bindable(x) {
			return nil
		}
		return e.name(x, typeName(x.Name), x.Name, mod, &x.Provenance)
	case *model.Constant:
		return e.name(x, constName(x.Name), x.Name, mod, &x.Provenance)
	case *model.Property:
		return e.name(x, "Prop"+constName(strings.TrimPrefix(x.Name, "SDL_PROP_")), x.Name, mod, &x.Provenance)
	case *model.Hint:
		return e.name(x, "Hint"+constName(x.Short), x.Name, mod, &x.Provenance)
	}
	return nil
}

// nameStruct names st and the records nested in it, which are called
// after their parent and field unless they carry their own tag.
func (e *Emitter) nameStruct(mod *model.Module, st *model.Struct, goName string) error {
	if err := e.nameType(st, goName, mod); err != nil {
		return err
	}
	for _, i := range nestedRecords(st) {
		f := st.Fields[i]
		sub := goName + fieldName(f.Name, i)
		if f.Record.Tag != "" && f.Record.Tag == f.Record.Name {
			sub = typeName(f.Record.Name)
		}
		if err := e.nameStruct(mod, f.Record, sub); err != nil {
			return err
		}
	}
	return nil
}

// nestedRecords returns the indexes of the fields that introduce a nested
// record body.
func nestedRecords(st *model.Struct) []int {
	var out []int
	for i, f := range st.Fields {
		if f.Record == nil || (i > 0 && st.Fields[i-1].Record == f.Record) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// bindable reports functions purego can call.
func bindable(f *model.Function) bool {
	if f.Type.Variadic {
		return false
	}
	return !slices.ContainsFunc(f.Type.Params, skipParam)
}

// header starts a generated Go file.
func (e *Emitter) header(b *strings.Builder, source string, gate constraint.Expr) {
	if source != "" {
		fmt.Fprintf(b, "// Code generated by %s from %s. DO NOT EDIT.\n\n", e.opts.Generator, source)
	} else {
		fmt.Fprintf(b, "// Code generated by %s. DO NOT EDIT.\n\n", e.opts.Generator)
	}
	if gate != nil {
		fmt.Fprintf(b, "//go:build %s\n\n", gate.String())
	}
}

// addFile formats src and records it.
func (e *Emitter) addFile(path string, src []byte) error {
	formatted, err := format.Source(src)
	if err != nil {
		return diag.NewError(diag.EmtFormat, noSpan, fmt.Sprintf("generated %s does not format: %v", path, err))
	}
	e.out.Files = append(e.out.Files, File{Path: path, Data: formatted})
	return nil
}
