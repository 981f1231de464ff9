package emit

import (
	"go/build/constraint"
	"regexp"
	"strings"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/model"
)

// platformTags maps SDL platform macros to GOOS tags.
var platformTags = map[string]string{
	"SDL_PLATFORM_WINDOWS":    "windows",
	"SDL_PLATFORM_WIN32":      "windows",
	"SDL_PLATFORM_WINGDK":     "windows",
	"SDL_PLATFORM_LINUX":      "linux",
	"SDL_PLATFORM_APPLE":      "darwin",
	"SDL_PLATFORM_MACOS":      "darwin",
	"SDL_PLATFORM_IOS":        "ios",
	"SDL_PLATFORM_ANDROID":    "android",
	"SDL_PLATFORM_EMSCRIPTEN": "js",
	"SDL_PLATFORM_FREEBSD":    "freebsd",
	"SDL_PLATFORM_NETBSD":     "netbsd",
	"SDL_PLATFORM_OPENBSD":    "openbsd",
	"SDL_PLATFORM_UNIX":       "unix",
}

var bigEndianArch = []string{"mips", "mips64", "ppc64", "s390x"}

var nonTagChars = regexp.MustCompile(`[^a-z0-9_]+`)

// gateOf returns the build constraint guarding an item, or nil when the
// item is always compiled.
func gateOf(p *model.Provenance, baseline ast.Version) constraint.Expr {
	var gate constraint.Expr
	for _, c := range p.Cond {
		gate = and(gate, condExpr(c))
	}
	if p.Since != nil && p.Since.Compare(baseline) > 0 {
		gate = and(gate, versionTag(*p.Since))
	}
	return gate
}

func and(x, y constraint.Expr) constraint.Expr {
	if x == nil {
		return y
	}
	return &constraint.AndExpr{X: x, Y: y}
}

func or(x, y constraint.Expr) constraint.Expr {
	if x == nil {
		return y
	}
	return &constraint.OrExpr{X: x, Y: y}
}

func versionTag(v ast.Version) constraint.Expr {
	return &constraint.TagExpr{Tag: "sdl_" + strings.ReplaceAll(v.String(), ".", "_")}
}

// condExpr translates a preprocessor condition.
func condExpr(e ast.Expr) constraint.Expr {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return condExpr(x.X)
	case *ast.DefinedExpr:
		return macroTag(x.Name.Name)
	case *ast.Ident:
		return macroTag(x.Name)
	case *ast.UnaryExpr:
		if x.Op == ast.ExprUnaryNot {
			return &constraint.NotExpr{X: condExpr(x.X)}
		}
	case *ast.BinaryExpr:
		switch x.Op {
		case ast.ExprBinaryLogicalAnd:
			return &constraint.AndExpr{X: condExpr(x.X), Y: condExpr(x.Y)}
		case ast.ExprBinaryLogicalOr:
			return &constraint.OrExpr{X: condExpr(x.X), Y: condExpr(x.Y)}
		case ast.ExprBinaryEq, ast.ExprBinaryNotEq:
			if big, ok := byteOrder(x); ok {
				if x.Op == ast.ExprBinaryNotEq {
					big = !big
				}
				return endianExpr(big)
			}
		}
	}
	return exprTag(e)
}

// byteOrder recognizes SDL_BYTEORDER == SDL_BIG_ENDIAN and its variants.
func byteOrder(b *ast.BinaryExpr) (big, ok bool) {
	x, xok := b.X.(*ast.Ident)
	y, yok := b.Y.(*ast.Ident)
	if !xok || !yok {
		return false, false
	}
	if y.Name == "SDL_BYTEORDER" {
		x, y = y, x
	}
	if x.Name != "SDL_BYTEORDER" {
		return false, false
	}
	switch y.Name {
	case "SDL_BIG_ENDIAN":
		return true, true
	case "SDL_LIL_ENDIAN":
		return false, true
	}
	return false, false
}

func endianExpr(big bool) constraint.Expr {
	var e constraint.Expr
	for _, arch := range bigEndianArch {
		e = or(e, &constraint.TagExpr{Tag: arch})
	}
	if big {
		return e
	}
	return &constraint.NotExpr{X: e}
}

func macroTag(name string) constraint.Expr {
	if tag, ok := platformTags[name]; ok {
		return &constraint.TagExpr{Tag: tag}
	}
	name = strings.TrimPrefix(name, "SDL_")
	return &constraint.TagExpr{Tag: "sdl_" + sanitizeTag(name)}
}

// exprTag names a condition that has no Go equivalent.
func exprTag(e ast.Expr) constraint.Expr {
	return &constraint.TagExpr{Tag: "sdl_expr_" + sanitizeTag(ast.ExprString(e))}
}

func sanitizeTag(s string) string {
	s = nonTagChars.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}

// gateKey renders a gate for grouping and diagnostics; "" when ungated.
func gateKey(g constraint.Expr) string {
	if g == nil {
		return ""
	}
	return g.String()
}
