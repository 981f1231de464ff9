// Package testkit holds checks shared by parser and driver tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/source"
)

// CheckSpanInvariants verifies the provenance of a parsed header:
//  1. every declaration span is non-empty, points at sf and lies within
//     its content
//  2. declarations appear in source order; one typedef may yield several
//     declarations sharing a span
//  3. fields and enumerators lie inside their declaration
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil header or file")
	}
	if f.FileID != sf.ID {
		return fmt.Errorf("header points to file %d, want %d", f.FileID, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevStart uint32
	for i, d := range f.Decls {
		sp := d.Info().Span
		if err := checkSpan(sp, sf.ID, lenContent); err != nil {
			return fmt.Errorf("decl %d (%T): %w", i, d, err)
		}
		if sp.Start < prevStart {
			return fmt.Errorf("decl %d (%T) starts at %d before previous start %d", i, d, sp.Start, prevStart)
		}
		prevStart = sp.Start

		switch x := d.(type) {
		case *ast.RecordDecl:
			if err := checkFields(x, sp); err != nil {
				return fmt.Errorf("decl %d: %w", i, err)
			}
		case *ast.EnumDecl:
			for _, v := range x.Values {
				if !sp.Contains(v.Span) {
					return fmt.Errorf("enumerator %s %v outside %v", v.Name.Name, v.Span, sp)
				}
			}
		}
	}
	return nil
}

func checkSpan(sp source.Span, file source.FileID, lenContent uint32) error {
	if sp.File != file {
		return fmt.Errorf("span %v points to file %d", sp, sp.File)
	}
	if sp.Empty() {
		return fmt.Errorf("empty span %v", sp)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}

func checkFields(r *ast.RecordDecl, outer source.Span) error {
	for _, fld := range r.Fields {
		if !outer.Contains(fld.Span) {
			return fmt.Errorf("field %v outside %v", fld.Span, outer)
		}
		if fld.Record != nil {
			if err := checkFields(fld.Record, outer); err != nil {
				return err
			}
		}
	}
	return nil
}
