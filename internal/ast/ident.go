package ast

import "sdl3gen/internal/source"

// Ident is a C identifier.
type Ident struct {
	Name string
	Span source.Span
}

func (id *Ident) String() string {
	if id == nil {
		return ""
	}
	return id.Name
}

// NewIdent builds a synthetic identifier anchored at sp.
func NewIdent(name string, sp source.Span) *Ident {
	return &Ident{Name: name, Span: sp}
}
