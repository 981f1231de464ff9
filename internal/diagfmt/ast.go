package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/source"
)

// ASTNodeOutput is the JSON shape of one declaration or sub-node.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Since    string          `json:"since,omitempty"`
	Cond     string          `json:"cond,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints the declarations of f as an indented tree.
func FormatASTPretty(w io.Writer, f *ast.File, fs *source.FileSet) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	root := fileNode(f)
	header := f.Path
	if fs != nil && int(f.FileID) < fs.Len() {
		header = fs.Get(f.FileID).FormatPath("auto", fs.BaseDir())
	}
	if _, err := fmt.Fprintf(w, "%s (module %s, %d decls)\n", header, f.Module, len(f.Decls)); err != nil {
		return err
	}
	for i, child := range root.Children {
		writeTree(w, child, fs, "", i == len(root.Children)-1)
	}
	return nil
}

// FormatASTJSON writes the declarations of f as one JSON document.
func FormatASTJSON(w io.Writer, f *ast.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fileNode(f))
}

func writeTree(w io.Writer, n ASTNodeOutput, fs *source.FileSet, prefix string, last bool) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	var b strings.Builder
	b.WriteString(n.Type)
	if n.Name != "" {
		b.WriteByte(' ')
		b.WriteString(n.Name)
	}
	if n.Text != "" {
		b.WriteString(": ")
		b.WriteString(n.Text)
	}
	if n.Since != "" {
		fmt.Fprintf(&b, " [since %s]", n.Since)
	}
	if n.Cond != "" {
		fmt.Fprintf(&b, " [if %s]", n.Cond)
	}
	if hasSource(n.Span, fs) {
		start, _ := fs.Resolve(n.Span)
		fmt.Fprintf(&b, " (%d:%d)", start.Line, start.Col)
	}
	fmt.Fprintf(w, "%s%s%s\n", prefix, branch, b.String())
	for i, child := range n.Children {
		writeTree(w, child, fs, prefix+next, i == len(n.Children)-1)
	}
}

func fileNode(f *ast.File) ASTNodeOutput {
	out := ASTNodeOutput{Type: "File", Name: f.Module, Span: source.Span{File: f.FileID}}
	for _, d := range f.Decls {
		out.Children = append(out.Children, declNode(d))
	}
	return out
}

func declNode(d ast.Decl) ASTNodeOutput {
	info := d.Info()
	n := ASTNodeOutput{Span: info.Span, Cond: condString(info.Cond)}
	if v := info.Since(); v != nil {
		n.Since = v.String()
	}
	switch x := d.(type) {
	case *ast.Define:
		n.Type = "Define"
		n.Name = x.Name.Name
		if x.FuncLike {
			params := make([]string, len(x.Params))
			for i, p := range x.Params {
				params[i] = p.Name
			}
			n.Name += "(" + strings.Join(params, ", ") + ")"
		}
		if x.Value != nil {
			n.Text = ast.ExprString(x.Value)
		}
	case *ast.Typedef:
		n.Type = "Typedef"
		n.Name = x.Name.Name
		n.Text = x.Type.String()
	case *ast.RecordDecl:
		n = recordNode(x, n)
	case *ast.EnumDecl:
		n.Type = "Enum"
		n.Name = x.Name()
		for _, v := range x.Values {
			child := ASTNodeOutput{Type: "Value", Name: v.Name.Name, Span: v.Span, Cond: condString(v.Cond)}
			if v.Value != nil {
				child.Text = ast.ExprString(v.Value)
			}
			n.Children = append(n.Children, child)
		}
	case *ast.FuncDecl:
		n.Type = "Func"
		if x.Inline {
			n.Type = "InlineFunc"
		}
		n.Name = x.Name.Name
		n.Text = x.Type.String()
		for _, a := range x.Attrs {
			n.Children = append(n.Children, attrNode(a))
		}
		for _, p := range x.Type.Params {
			child := ASTNodeOutput{Type: "Param", Span: p.Span, Text: p.Type.String()}
			if p.Name != nil {
				child.Name = p.Name.Name
			}
			for _, a := range p.Attrs {
				child.Children = append(child.Children, attrNode(a))
			}
			n.Children = append(n.Children, child)
		}
	case *ast.Include:
		n.Type = "Include"
		n.Text = x.Path
		if x.System {
			n.Text = "<" + x.Path + ">"
		}
	case *ast.Skipped:
		n.Type = "Skipped"
		n.Text = x.Reason
	default:
		n.Type = fmt.Sprintf("%T", d)
	}
	return n
}

func recordNode(r *ast.RecordDecl, n ASTNodeOutput) ASTNodeOutput {
	n.Type = "Struct"
	if r.Kind == ast.RecordUnion {
		n.Type = "Union"
	}
	if r.Tag != nil || r.Typedef != nil {
		n.Name = r.Name()
	}
	if r.Opaque {
		n.Text = "opaque"
	}
	for _, f := range r.Fields {
		child := ASTNodeOutput{Type: "Field", Span: f.Span, Cond: condString(f.Cond)}
		if f.Name != nil {
			child.Name = f.Name.Name
		}
		if f.Record != nil {
			child = recordNode(f.Record, child)
			if f.Name != nil {
				child.Name = f.Name.Name
			}
		} else if f.Type != nil {
			child.Text = f.Type.String()
		}
		if f.Bits != nil {
			child.Text += " : " + ast.ExprString(f.Bits)
		}
		n.Children = append(n.Children, child)
	}
	return n
}

func attrNode(a ast.Attribute) ASTNodeOutput {
	n := ASTNodeOutput{Type: "Attr", Name: a.Name.Name, Span: a.Span}
	if a.Args.Len() > 0 {
		n.Text = ast.CallArgsString(a.Args)
	}
	return n
}

func condString(c ast.Cond) string {
	if c.IsZero() {
		return ""
	}
	return c.String()
}
