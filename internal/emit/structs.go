package emit

import (
	"fmt"
	"strings"

	"sdl3gen/internal/model"
)

func (e *Emitter) emitStruct(f *goFile, st *model.Struct, goName string) error {
	e.writeDoc(&f.buf, &st.Provenance)
	var err error
	switch {
	case st.Opaque:
		fmt.Fprintf(&f.buf, "type %s struct{}\n\n", goName)
	case st.Union:
		err = e.emitUnion(f, st, goName)
	default:
		err = e.emitRecord(f, st, goName)
	}
	if err != nil {
		return err
	}
	for _, i := range nestedRecords(st) {
		sub := st.Fields[i].Record
		if err := e.emitStruct(f, sub, e.goNames[sub]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitRecord(f *goFile, st *model.Struct, goName string) error {
	b := &f.buf
	fmt.Fprintf(b, "type %s struct {\n", goName)
	if hasBitFields(st) {
		// storage arrays do not carry the alignment of the declared types
		if align := alignType(st.Align); align != "" {
			fmt.Fprintf(b, "\t_ [0]%s\n", align)
		}
	}
	for i := 0; i < len(st.Fields); i++ {
		fd := st.Fields[i]
		if fd.Bits > 0 {
			// one byte array per storage unit, up to the next member
			j := i
			var members []string
			for j < len(st.Fields) && st.Fields[j].Bits > 0 && st.Fields[j].Offset == fd.Offset {
				members = append(members, fmt.Sprintf("%s:%d", bitName(st.Fields[j].Name), st.Fields[j].Bits))
				j++
			}
			end := st.Size
			if j < len(st.Fields) {
				end = st.Fields[j].Offset
			}
			fmt.Fprintf(b, "\tbits%d [%d]byte // %s\n", fd.Offset, end-fd.Offset, strings.Join(members, ", "))
			i = j - 1
			continue
		}
		t, err := e.types.goType(fd.Type, posField)
		if err != nil {
			return err
		}
		writeDoc(b, "\t", e.docs.render(fd.Doc, nil))
		fmt.Fprintf(b, "\t%s %s\n", fieldName(fd.Name, i), t)
	}
	b.WriteString("}\n\n")
	return nil
}

func hasBitFields(st *model.Struct) bool {
	for _, f := range st.Fields {
		if f.Bits > 0 {
			return true
		}
	}
	return false
}

func bitName(name string) string {
	if name == "" {
		return "_"
	}
	return name
}

// emitUnion lays a union out as raw storage with typed accessors.
func (e *Emitter) emitUnion(f *goFile, st *model.Struct, goName string) error {
	b := &f.buf
	fmt.Fprintf(b, "type %s struct {\n", goName)
	if align := alignType(st.Align); align != "" {
		fmt.Fprintf(b, "\t_ [0]%s\n", align)
	}
	fmt.Fprintf(b, "\tdata [%d]byte\n}\n\n", st.Size)
	for i, fd := range st.Fields {
		t, err := e.types.goType(fd.Type, posField)
		if err != nil {
			return err
		}
		name := fieldName(fd.Name, i)
		writeDoc(b, "", e.docs.render(fd.Doc, nil))
		fmt.Fprintf(b, "func (u *%s) %s() *%s { return (*%s)(unsafe.Pointer(u)) }\n\n", goName, name, t, t)
	}
	return nil
}

func alignType(align int) string {
	switch align {
	case 2:
		return "uint16"
	case 4:
		return "uint32"
	case 8:
		return "uint64"
	}
	return ""
}
