// Package patch corrects declarations whose generic parse carries the wrong
// semantic type. Rules live in a fixed table; the first rule that matches a
// define rewrites it and the scan stops.
package patch

import (
	"strings"

	"sdl3gen/internal/ast"
)

// Rule is one self-contained correction: a module filter, a name predicate
// and an in-place transform.
type Rule struct {
	Name string
	// Module restricts the rule to one module; "" matches every module.
	Module string
	Match  func(name string) bool
	Apply  func(d *ast.Define)
}

func (r *Rule) matches(module string, d *ast.Define) bool {
	if r.Module != "" && r.Module != module {
		return false
	}
	return r.Match(d.Name.Name)
}

// Table is an ordered rule list.
type Table []Rule

// Apply runs the first matching rule on d and reports whether one fired.
// Function-like and empty macros are never patched.
func (t Table) Apply(module string, d *ast.Define) bool {
	if d == nil || d.FuncLike || d.Value == nil {
		return false
	}
	for i := range t {
		if t[i].matches(module, d) {
			t[i].Apply(d)
			return true
		}
	}
	return false
}

// Lookup returns the rule that would fire for d, if any.
func (t Table) Lookup(module string, d *ast.Define) (*Rule, bool) {
	if d == nil || d.FuncLike || d.Value == nil {
		return nil, false
	}
	for i := range t {
		if t[i].matches(module, d) {
			return &t[i], true
		}
	}
	return nil, false
}

// ApplyFile patches every define of f in place and returns the names of the
// patched macros in source order.
func (t Table) ApplyFile(f *ast.File) []string {
	var patched []string
	for _, d := range f.Defines() {
		if t.Apply(f.Module, d) {
			patched = append(patched, d.Name.Name)
		}
	}
	return patched
}

// HasPrefix matches names starting with prefix.
func HasPrefix(prefix string) func(string) bool {
	return func(name string) bool { return strings.HasPrefix(name, prefix) }
}

// HasPrefixSuffix matches names with both prefix and suffix, not overlapping.
func HasPrefixSuffix(prefix, suffix string) func(string) bool {
	return func(name string) bool {
		return len(name) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	}
}

// CastTo rewrites the define value into a cast to the named C type.
func CastTo(typeName string) func(*ast.Define) {
	return func(d *ast.Define) {
		d.Value = ast.CastTo(ast.Named(typeName, d.Value.ExprSpan()), d.Value)
	}
}

// CastType returns the C type a patched define was cast to, or "".
func CastType(d *ast.Define) string {
	c, ok := d.Value.(*ast.CastExpr)
	if !ok {
		return ""
	}
	n, ok := c.Type.(*ast.NamedType)
	if !ok {
		return ""
	}
	return n.Name
}
