// Package ast holds the parsed form of SDL headers: primitive nodes (Ident,
// Literal, Expr, CallArgs, Attribute), C type expressions and the
// declarations recognised by the declaration parsers.
//
// Every node records the source.Span it was parsed from. Nodes are plain
// pointers; the patch engine rewrites Define values in place before the
// model builder reads them.
package ast
