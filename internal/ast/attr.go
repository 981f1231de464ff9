package ast

import "sdl3gen/internal/source"

// AttrKind says where an attribute macro may appear.
type AttrKind uint8

const (
	// AttrArg attributes precede a parameter (SDL_PRINTF_FORMAT_STRING).
	AttrArg AttrKind = iota
	// AttrFn attributes follow a function declarator (SDL_PRINTF_VARARG_FUNC(1)).
	AttrFn
)

func (k AttrKind) String() string {
	if k == AttrFn {
		return "fn"
	}
	return "arg"
}

// Attribute is a whitelisted annotation macro with optional arguments.
// Args is empty when the macro takes none.
type Attribute struct {
	Kind AttrKind
	Name Ident
	Args CallArgs
	Span source.Span
}
