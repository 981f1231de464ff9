package emit

import (
	"fmt"
	"strings"

	"sdl3gen/internal/model"
)

const bindSource = `type symbol struct {
	name string
	fptr any
}

// symbols is filled by the init functions of the module files.
var symbols []symbol

// Bind resolves the functions of every module in lib, a handle returned by
// purego.Dlopen. Functions the library does not export stay nil; their
// names are listed in the returned error.
func Bind(lib uintptr) error {
	var missing []string
	for _, s := range symbols {
		if err := bindSymbol(lib, s); err != nil {
			missing = append(missing, s.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d functions not found: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

func bindSymbol(lib uintptr, s symbol) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", s.name, r)
		}
	}()
	purego.RegisterLibFunc(s.fptr, lib, s.name)
	return nil
}
`

// emitAggregate writes the package file: documentation, the module list
// and the binder shared by all module files.
func (e *Emitter) emitAggregate() error {
	var b strings.Builder
	e.header(&b, "", nil)
	fmt.Fprintf(&b, "// Package %s binds the SDL 3 C API with purego.\n", e.opts.Package)
	b.WriteString("//\n// Call [Bind] with a library handle before using any function.\n")
	fmt.Fprintf(&b, "package %s\n\n", e.opts.Package)
	b.WriteString("import (\n\t\"fmt\"\n\t\"strings\"\n\n\t\"github.com/ebitengine/purego\"\n)\n\n")
	if e.opts.Revision != "" {
		b.WriteString("// Revision identifies the headers the package was generated from.\n")
		fmt.Fprintf(&b, "const Revision = %q\n\n", e.opts.Revision)
	}
	b.WriteString("// Modules lists the header modules, in file order.\nvar Modules = []string{\n")
	for _, mod := range e.m.Modules {
		fmt.Fprintf(&b, "\t%q,\n", mod.Name)
	}
	b.WriteString("}\n\n")
	b.WriteString(bindSource)
	return e.addFile(e.opts.Package+".go", []byte(b.String()))
}

// emitLayoutChecks writes compile-time assertions that Go lays the
// generated structs out like the C compiler of the default target.
func (e *Emitter) emitLayoutChecks() error {
	var checks []string
	var visit func(st *model.Struct)
	visit = func(st *model.Struct) {
		if checkable(st) {
			checks = append(checks, fmt.Sprintf("\t_ [%d]byte = [unsafe.Sizeof(%s{})]byte{}\n", st.Size, e.goNames[st]))
		}
		for _, i := range nestedRecords(st) {
			visit(st.Fields[i].Record)
		}
	}
	for _, mod := range e.m.Modules {
		for _, st := range mod.Structs() {
			if _, ok := e.goNames[st]; ok && gateOf(&st.Provenance, e.opts.Baseline) == nil {
				visit(st)
			}
		}
	}
	if len(checks) == 0 {
		return nil
	}
	var b strings.Builder
	e.header(&b, "", nil)
	fmt.Fprintf(&b, "package %s\n\nimport \"unsafe\"\n\n", e.opts.Package)
	b.WriteString("// Sizes of the C structs on linux/amd64.\nvar (\n")
	for _, c := range checks {
		b.WriteString(c)
	}
	b.WriteString(")\n")
	return e.addFile("layout_linux_amd64.go", []byte(b.String()))
}

// checkable reports structs whose Go layout must equal the C layout. Go
// pads a trailing zero-size field, so flexible array members are skipped.
func checkable(st *model.Struct) bool {
	if st.Opaque || st.Size == 0 || len(st.Fields) == 0 {
		return false
	}
	last := st.Fields[len(st.Fields)-1]
	return st.Union || !strings.HasSuffix(last.CType, "[]")
}
