package emit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/model"
)

// metadataSchema is bumped when the snapshot layout changes.
const metadataSchema uint16 = 1

// MetaSnapshot is the msgpack form of the metadata sub-package.
type MetaSnapshot struct {
	Schema   uint16
	Revision string
	Modules  []MetaModule
}

type MetaModule struct {
	Name       string
	Header     string
	Groups     []MetaGroup
	Structs    []MetaStruct
	Properties []MetaProperty
	Hints      []MetaHint
}

type MetaGroup struct {
	Name   string
	GoName string
	Kind   string
	Doc    string
	Since  string
	Cond   string
	Values []MetaValue
}

type MetaValue struct {
	Name   string
	Short  string
	GoName string
	Value  uint64
	Signed bool
	Doc    string
	Since  string
	Cond   string
}

type MetaStruct struct {
	Name   string
	GoName string
	Union  bool
	Size   int
	Align  int
	Doc    string
	Since  string
	Cond   string
	Fields []MetaField
}

type MetaField struct {
	Name   string
	Type   string
	Offset int
	Bits   int
	Doc    string
	Since  string
}

type MetaProperty struct {
	Name   string
	Short  string
	GoName string
	Key    string
	Type   string
	Doc    string
	Since  string
	Cond   string
}

type MetaHint struct {
	Name   string
	Short  string
	GoName string
	Key    string
	Doc    string
	Since  string
	Cond   string
}

func sinceString(v *ast.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func metaDoc(s string) string { return norm.NFC.String(s) }

// snapshot collects the descriptor tables of the model.
func (e *Emitter) snapshot() *MetaSnapshot {
	snap := &MetaSnapshot{Schema: metadataSchema, Revision: e.opts.Revision}
	for _, mod := range e.m.Modules {
		mm := MetaModule{Name: mod.Name, Header: mod.Header}
		for _, g := range mod.Groups() {
			mg := MetaGroup{
				Name: g.Name, GoName: e.goNames[g], Kind: g.Kind.String(),
				Doc: metaDoc(g.Doc), Since: sinceString(g.Since), Cond: g.Cond.String(),
			}
			for _, v := range g.Values {
				mg.Values = append(mg.Values, MetaValue{
					Name: v.Name, Short: v.Short, GoName: e.goNames[v],
					Value: v.Value.Uint64(), Signed: v.Value.IsNegative(),
					Doc: metaDoc(v.Doc), Since: sinceString(v.Since), Cond: v.Cond.String(),
				})
			}
			mm.Groups = append(mm.Groups, mg)
		}
		for _, st := range mod.Structs() {
			mm.Structs = append(mm.Structs, e.metaStructs(st)...)
		}
		for _, p := range mod.Properties() {
			mm.Properties = append(mm.Properties, MetaProperty{
				Name: p.Name, Short: p.Short, GoName: e.goNames[p], Key: p.Key, Type: p.Type.String(),
				Doc: metaDoc(p.Doc), Since: sinceString(p.Since), Cond: p.Cond.String(),
			})
		}
		for _, h := range mod.Hints() {
			mm.Hints = append(mm.Hints, MetaHint{
				Name: h.Name, Short: h.Short, GoName: e.goNames[h], Key: h.Key,
				Doc: metaDoc(h.Doc), Since: sinceString(h.Since), Cond: h.Cond.String(),
			})
		}
		snap.Modules = append(snap.Modules, mm)
	}
	return snap
}

// metaStructs returns st followed by its nested records.
func (e *Emitter) metaStructs(st *model.Struct) []MetaStruct {
	ms := MetaStruct{
		Name: st.Name, GoName: e.goNames[st], Union: st.Union, Size: st.Size, Align: st.Align,
		Doc: metaDoc(st.Doc), Since: sinceString(st.Since), Cond: st.Cond.String(),
	}
	for _, f := range st.Fields {
		ms.Fields = append(ms.Fields, MetaField{
			Name: f.Name, Type: f.CType, Offset: f.Offset, Bits: f.Bits,
			Doc: metaDoc(f.Doc), Since: sinceString(f.Since),
		})
	}
	out := []MetaStruct{ms}
	for _, i := range nestedRecords(st) {
		out = append(out, e.metaStructs(st.Fields[i].Record)...)
	}
	return out
}

// EncodeMetadata serializes a snapshot with msgpack.
func EncodeMetadata(snap *MetaSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(snap); err != nil {
		return nil, diag.NewError(diag.IOEncodeMetadata, noSpan, fmt.Sprintf("encode metadata: %v", err))
	}
	return buf.Bytes(), nil
}

// DecodeMetadata reads a snapshot written by EncodeMetadata.
func DecodeMetadata(data []byte) (*MetaSnapshot, error) {
	var snap MetaSnapshot
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return nil, diag.NewError(diag.IOEncodeMetadata, noSpan, fmt.Sprintf("decode metadata: %v", err))
	}
	if snap.Schema != metadataSchema {
		return nil, diag.NewError(diag.IOEncodeMetadata, noSpan,
			fmt.Sprintf("metadata schema %d, want %d", snap.Schema, metadataSchema))
	}
	return &snap, nil
}

const metadataTypes = `// Module describes the declarations of one header.
type Module struct {
	Name       string
	Header     string
	Groups     []Group
	Structs    []Struct
	Properties []Property
	Hints      []Hint
}

// Group is an enum, flag set or identifier type with its values.
type Group struct {
	Name   string
	GoName string
	Kind   string
	Doc    string
	Since  string
	Cond   string
	Values []GroupValue
}

// GroupValue is one named value of a group. Value holds the two's
// complement bits; Signed marks negative values.
type GroupValue struct {
	Name   string
	Short  string
	GoName string
	Value  uint64
	Signed bool
	Doc    string
	Since  string
	Cond   string
}

// Struct is a struct or union with its C layout.
type Struct struct {
	Name   string
	GoName string
	Union  bool
	Size   int
	Align  int
	Doc    string
	Since  string
	Cond   string
	Fields []Field
}

// Field is a struct member. Bits is the width of bit-fields.
type Field struct {
	Name   string
	Type   string
	Offset int
	Bits   int
	Doc    string
	Since  string
}

// Property is a key of an SDL property set.
type Property struct {
	Name   string
	Short  string
	GoName string
	Key    string
	Type   string
	Doc    string
	Since  string
	Cond   string
}

// Hint is a configuration hint.
type Hint struct {
	Name   string
	Short  string
	GoName string
	Key    string
	Doc    string
	Since  string
	Cond   string
}
`

// emitMetadata writes the metadata sub-package and its msgpack snapshot.
func (e *Emitter) emitMetadata() error {
	snap := e.snapshot()

	var b strings.Builder
	e.header(&b, "", nil)
	b.WriteString("// Package metadata describes the groups, structs, properties and hints\n")
	fmt.Fprintf(&b, "// of package %s.\npackage metadata\n\n", e.opts.Package)
	b.WriteString("// Modules lists every module, in file order.\nvar Modules = []*Module{\n")
	for _, mm := range snap.Modules {
		fmt.Fprintf(&b, "\t&%s,\n", metaVar(mm.Name))
	}
	b.WriteString("}\n\n")
	b.WriteString(metadataTypes)
	if err := e.addFile("metadata/metadata.go", []byte(b.String())); err != nil {
		return err
	}

	for _, mm := range snap.Modules {
		var mb strings.Builder
		e.header(&mb, mm.Header, nil)
		mb.WriteString("package metadata\n\n")
		fmt.Fprintf(&mb, "var %s = Module{\n", metaVar(mm.Name))
		writeMetaModule(&mb, mm)
		mb.WriteString("}\n")
		if err := e.addFile("metadata/"+goFileName(mm.Name)+".go", []byte(mb.String())); err != nil {
			return err
		}
	}

	data, err := EncodeMetadata(snap)
	if err != nil {
		return err
	}
	e.out.Files = append(e.out.Files, File{Path: "metadata/metadata.msgpack", Data: data})
	return nil
}

func metaVar(module string) string { return strcase.ToLowerCamel(module) + "Module" }

// metaWriter renders composite literals field by field, skipping zero
// values to keep the tables readable.
type metaWriter struct {
	b      *strings.Builder
	indent string
}

func (w metaWriter) str(name, v string) {
	if v != "" {
		fmt.Fprintf(w.b, "%s%s: %s,\n", w.indent, name, strconv.Quote(v))
	}
}

func (w metaWriter) num(name string, v int64) {
	if v != 0 {
		fmt.Fprintf(w.b, "%s%s: %d,\n", w.indent, name, v)
	}
}

func (w metaWriter) flag(name string, v bool) {
	if v {
		fmt.Fprintf(w.b, "%s%s: true,\n", w.indent, name)
	}
}

func (w metaWriter) in() metaWriter { return metaWriter{b: w.b, indent: w.indent + "\t"} }

func (w metaWriter) open(format string, args ...any) {
	fmt.Fprintf(w.b, w.indent+format+"\n", args...)
}

func writeMetaModule(b *strings.Builder, mm MetaModule) {
	w := metaWriter{b: b, indent: "\t"}
	w.str("Name", mm.Name)
	w.str("Header", mm.Header)
	if len(mm.Groups) > 0 {
		w.open("Groups: []Group{")
		for _, g := range mm.Groups {
			gw := w.in()
			gw.open("{")
			fw := gw.in()
			fw.str("Name", g.Name)
			fw.str("GoName", g.GoName)
			fw.str("Kind", g.Kind)
			fw.str("Doc", g.Doc)
			fw.str("Since", g.Since)
			fw.str("Cond", g.Cond)
			if len(g.Values) > 0 {
				fw.open("Values: []GroupValue{")
				for _, v := range g.Values {
					vw := fw.in()
					vw.open("{")
					xw := vw.in()
					xw.str("Name", v.Name)
					xw.str("Short", v.Short)
					xw.str("GoName", v.GoName)
					if v.Value != 0 {
						xw.open("Value: %#x,", v.Value)
					}
					xw.flag("Signed", v.Signed)
					xw.str("Doc", v.Doc)
					xw.str("Since", v.Since)
					xw.str("Cond", v.Cond)
					vw.open("},")
				}
				fw.open("},")
			}
			gw.open("},")
		}
		w.open("},")
	}
	if len(mm.Structs) > 0 {
		w.open("Structs: []Struct{")
		for _, st := range mm.Structs {
			sw := w.in()
			sw.open("{")
			fw := sw.in()
			fw.str("Name", st.Name)
			fw.str("GoName", st.GoName)
			fw.flag("Union", st.Union)
			fw.num("Size", int64(st.Size))
			fw.num("Align", int64(st.Align))
			fw.str("Doc", st.Doc)
			fw.str("Since", st.Since)
			fw.str("Cond", st.Cond)
			if len(st.Fields) > 0 {
				fw.open("Fields: []Field{")
				for _, f := range st.Fields {
					xw := fw.in()
					xw.open("{")
					yw := xw.in()
					yw.str("Name", f.Name)
					yw.str("Type", f.Type)
					yw.num("Offset", int64(f.Offset))
					yw.num("Bits", int64(f.Bits))
					yw.str("Doc", f.Doc)
					yw.str("Since", f.Since)
					xw.open("},")
				}
				fw.open("},")
			}
			sw.open("},")
		}
		w.open("},")
	}
	if len(mm.Properties) > 0 {
		w.open("Properties: []Property{")
		for _, p := range mm.Properties {
			pw := w.in()
			pw.open("{")
			fw := pw.in()
			fw.str("Name", p.Name)
			fw.str("Short", p.Short)
			fw.str("GoName", p.GoName)
			fw.str("Key", p.Key)
			fw.str("Type", p.Type)
			fw.str("Doc", p.Doc)
			fw.str("Since", p.Since)
			fw.str("Cond", p.Cond)
			pw.open("},")
		}
		w.open("},")
	}
	if len(mm.Hints) > 0 {
		w.open("Hints: []Hint{")
		for _, h := range mm.Hints {
			hw := w.in()
			hw.open("{")
			fw := hw.in()
			fw.str("Name", h.Name)
			fw.str("Short", h.Short)
			fw.str("GoName", h.GoName)
			fw.str("Key", h.Key)
			fw.str("Doc", h.Doc)
			fw.str("Since", h.Since)
			fw.str("Cond", h.Cond)
			hw.open("},")
		}
		w.open("},")
	}
}
