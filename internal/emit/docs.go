package emit

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"sdl3gen/internal/ast"
)

// docRenderer turns header documentation into Go doc comment lines.
type docRenderer struct {
	links map[string]string // C name -> Go name
}

// refPattern matches an SDL name, optionally in backquotes or called.
var refPattern = regexp.MustCompile("`?\\b((?:SDLK?|TTF|IMG|MIX|NET)_[A-Za-z0-9_]+)(\\(\\))?`?")

// render returns comment lines without the "// " marker. Code lines start
// with a tab.
func (r *docRenderer) render(text string, since *ast.Version) []string {
	text = norm.NFC.String(text)
	var (
		out    []string
		params []string
		ret    string
		thread string
		see    []string
		cont   *string
		code   bool
	)
	blank := func() {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if !code {
				blank()
			}
			code = !code
			cont = nil
			continue
		}
		if code {
			if trimmed == "" {
				out = append(out, "")
			} else {
				out = append(out, "\t"+strings.TrimRight(line, " \t"))
			}
			continue
		}
		tag, rest, isTag := docTag(trimmed)
		switch {
		case isTag && tag == "param":
			params = append(params, r.link(paramLine(rest)))
			cont = &params[len(params)-1]
		case isTag && (tag == "returns" || tag == "return"):
			ret = r.link(rest)
			cont = &ret
		case isTag && tag == "threadsafety":
			thread = r.link(rest)
			cont = &thread
		case isTag && tag == "sa":
			see = append(see, r.link(rest))
			cont = nil
		case isTag && tag == "since":
			cont = nil
		case isTag:
			// unknown tags keep their text
			out = append(out, r.link(rest))
			cont = nil
		case trimmed == "":
			blank()
			cont = nil
		case cont != nil:
			*cont += " " + r.link(trimmed)
		default:
			out = append(out, r.link(trimmed))
		}
	}
	if len(params) > 0 {
		blank()
		out = append(out, "Parameters:")
		for _, p := range params {
			out = append(out, "  - "+p)
		}
	}
	if ret != "" {
		blank()
		out = append(out, "Returns "+ret)
	}
	if thread != "" {
		blank()
		out = append(out, "Thread safety: "+thread)
	}
	if since != nil {
		blank()
		out = append(out, "Available since SDL "+since.String()+".")
	}
	if len(see) > 0 {
		blank()
		out = append(out, "See also: "+strings.Join(see, ", ")+".")
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func docTag(line string) (tag, rest string, ok bool) {
	if !strings.HasPrefix(line, `\`) {
		return "", "", false
	}
	tag, rest, _ = strings.Cut(line[1:], " ")
	if tag == "" {
		return "", "", false
	}
	return tag, strings.TrimSpace(rest), true
}

// paramLine formats "name description" as "name: description".
func paramLine(s string) string {
	name, desc, ok := strings.Cut(s, " ")
	if !ok {
		return name
	}
	return name + ": " + strings.TrimSpace(desc)
}

// link replaces references to generated declarations with doc links.
func (r *docRenderer) link(s string) string {
	return refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := refPattern.FindStringSubmatch(ref)
		goName, ok := r.links[m[1]]
		if !ok {
			return ref
		}
		if strings.HasPrefix(ref, "`") != strings.HasSuffix(ref, "`") {
			// keep an unbalanced quote outside the link
			if strings.HasPrefix(ref, "`") {
				return "`[" + goName + "]"
			}
			return "[" + goName + "]`"
		}
		return "[" + goName + "]"
	})
}

// writeDoc writes lines as a comment block.
func writeDoc(b *strings.Builder, indent string, lines []string) {
	for _, l := range lines {
		switch {
		case l == "":
			b.WriteString(indent + "//\n")
		case strings.HasPrefix(l, "\t"):
			b.WriteString(indent + "//" + l + "\n")
		default:
			b.WriteString(indent + "// " + l + "\n")
		}
	}
}
