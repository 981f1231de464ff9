package ast

import (
	"strconv"

	"sdl3gen/internal/source"
)

// PrimType is the primitive C type a literal carries.
type PrimType uint8

const (
	PrimInvalid    PrimType = iota
	PrimInt                 // int
	PrimUInt                // unsigned int
	PrimLong                // long
	PrimULong               // unsigned long
	PrimLongLong            // long long
	PrimULongLong           // unsigned long long
	PrimFloat               // float
	PrimDouble              // double
	PrimLongDouble          // long double
	PrimChar                // char
	PrimWChar               // wchar_t
	PrimString              // const char *
)

var primNames = [...]string{
	PrimInvalid:    "<invalid>",
	PrimInt:        "int",
	PrimUInt:       "unsigned int",
	PrimLong:       "long",
	PrimULong:      "unsigned long",
	PrimLongLong:   "long long",
	PrimULongLong:  "unsigned long long",
	PrimFloat:      "float",
	PrimDouble:     "double",
	PrimLongDouble: "long double",
	PrimChar:       "char",
	PrimWChar:      "wchar_t",
	PrimString:     "const char *",
}

func (p PrimType) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "PrimType(" + strconv.Itoa(int(p)) + ")"
}

// IsInteger reports integer-valued primitives, chars included.
func (p PrimType) IsInteger() bool {
	switch p {
	case PrimInt, PrimUInt, PrimLong, PrimULong, PrimLongLong, PrimULongLong, PrimChar, PrimWChar:
		return true
	}
	return false
}

// IsUnsigned reports unsigned integer primitives.
func (p PrimType) IsUnsigned() bool {
	switch p {
	case PrimUInt, PrimULong, PrimULongLong:
		return true
	}
	return false
}

// IsFloat reports floating primitives.
func (p PrimType) IsFloat() bool {
	return p == PrimFloat || p == PrimDouble || p == PrimLongDouble
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitChar
	LitString
)

// Literal is a numeric, character or string constant.
type Literal struct {
	Kind LitKind
	Type PrimType
	// Raw is the source lexeme. Adjacent string literals are joined with a space.
	Raw string
	// Digits is the integer or float lexeme without its suffix ("0x00", "1.5").
	Digits string
	// Int holds the value of integer and character literals.
	Int uint64
	// Float holds the value of floating literals.
	Float float64
	// Str holds the decoded bytes of string literals.
	Str  string
	Span source.Span
}
