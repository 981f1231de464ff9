package parser

import (
	"path/filepath"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/lexer"
	"sdl3gen/internal/source"
)

type Options struct {
	// Reporter receives lexer diagnostics as they happen. Parse failures are
	// returned, not reported.
	Reporter diag.Reporter
	// Library is the header directory the file came from, e.g. "SDL3".
	Library string
}

// firstError forwards diagnostics and remembers the first error.
type firstError struct {
	next  diag.Reporter
	first *diag.Diagnostic
}

func (r *firstError) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
	if sev >= diag.SevError && r.first == nil {
		d := diag.New(sev, code, primary, msg)
		d.Notes = notes
		r.first = &d
	}
}

// ParseFile lexes and parses one header. The first malformed construct
// aborts the file; its diag.Diagnostic is the returned error.
func ParseFile(file *source.File, module string, opts Options) (*ast.File, error) {
	lexErrs := &firstError{next: opts.Reporter}
	toks := lexer.All(file, lexer.Options{Reporter: lexErrs})
	if lexErrs.first != nil {
		return nil, *lexErrs.first
	}

	pp, err := preprocess(toks, module)
	if err != nil {
		return nil, err
	}
	p := &fileParser{module: module, pp: pp}
	decls, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &ast.File{
		Path:    file.Path,
		Module:  module,
		Library: opts.Library,
		FileID:  file.ID,
		Doc:     pp.doc,
		Decls:   decls,
	}, nil
}

// ModuleName derives the module from a header path: SDL_joystick.h -> joystick.
func ModuleName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimPrefix(stem, "SDL_")
	return strings.ToLower(stem)
}
