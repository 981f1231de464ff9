package ast

import "strings"

// Cond is the conjunction of preprocessor conditions a declaration sits
// under. The zero value means "always visible".
type Cond []Expr

// And returns c extended with e. c itself is not modified.
func (c Cond) And(e Expr) Cond {
	out := make(Cond, 0, len(c)+1)
	out = append(out, c...)
	return append(out, e)
}

// IsZero reports an unconditional declaration.
func (c Cond) IsZero() bool { return len(c) == 0 }

// String renders the condition as a C expression; "" when unconditional.
func (c Cond) String() string {
	parts := make([]string, 0, len(c))
	for _, e := range c {
		s := ExprString(e)
		if _, bin := e.(*BinaryExpr); bin && len(c) > 1 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " && ")
}
