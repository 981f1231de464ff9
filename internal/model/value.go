package model

import (
	"math"
	"strconv"
	"strings"
)

type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
)

// Value is an evaluated constant. Integers keep C width and signedness;
// Bits holds the two's complement pattern, sign-extended for signed values.
type Value struct {
	Kind   ValueKind
	Bits   uint64
	Signed bool
	Width  int // 8, 16, 32 or 64
	Float  float64
	Str    string
	// Hex is set when the value was written in hexadecimal.
	Hex bool
}

// IntValue builds a signed 32-bit integer value.
func IntValue(n int64) Value {
	return Value{Kind: ValueInt, Bits: uint64(n), Signed: true, Width: 32}
}

func (v Value) Int64() int64   { return int64(v.Bits) }
func (v Value) Uint64() uint64 { return v.Bits }

// IsNegative reports a signed integer below zero.
func (v Value) IsNegative() bool {
	return v.Kind == ValueInt && v.Signed && int64(v.Bits) < 0
}

// IsZero reports a zero integer or float, and the empty string.
func (v Value) IsZero() bool {
	switch v.Kind {
	case ValueInt:
		return v.Bits == 0
	case ValueFloat:
		return v.Float == 0
	case ValueString:
		return v.Str == ""
	}
	return true
}

// Literal renders the value as Go source.
func (v Value) Literal() string {
	switch v.Kind {
	case ValueInt:
		if v.IsNegative() {
			return strconv.FormatInt(v.Int64(), 10)
		}
		if v.Hex {
			return "0x" + hexDigits(v.Bits, v.Width)
		}
		return strconv.FormatUint(v.Bits, 10)
	case ValueFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case ValueString:
		return strconv.Quote(v.Str)
	}
	return ""
}

// String is the value as C-independent text, used by metadata.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNone:
		return ""
	}
	return v.Literal()
}

func hexDigits(bits uint64, width int) string {
	s := strconv.FormatUint(bits, 16)
	pad := width / 4
	if width >= 64 && bits <= math.MaxUint32 {
		pad = 8
	}
	for len(s) < pad {
		s = "0" + s
	}
	return strings.ToUpper(s)
}

// normalize truncates bits to width and sign-extends signed values.
func normalize(bits uint64, width int, signed bool) uint64 {
	if width >= 64 || width <= 0 {
		return bits
	}
	mask := uint64(1)<<uint(width) - 1
	b := bits & mask
	if signed && b&(uint64(1)<<uint(width-1)) != 0 {
		b |= ^mask
	}
	return b
}

func intOf(bits uint64, width int, signed, hex bool) Value {
	return Value{Kind: ValueInt, Bits: normalize(bits, width, signed), Signed: signed, Width: width, Hex: hex}
}

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}
