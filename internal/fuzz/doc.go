// Package fuzztests holds Go fuzz harnesses for the header front end
// (source -> lexer -> parser -> patches). They guard against panics and
// hangs on arbitrary input; seeds come from the driver test headers.
package fuzztests
