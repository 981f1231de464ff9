package token

import (
	"strings"

	"sdl3gen/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment  // // ...
	TriviaBlockComment // /* ... */
	TriviaDocBlock     // /** ... */
	TriviaDocTrailing  // /**< ... */
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDocBlock:
		return "DocBlock"
	case TriviaDocTrailing:
		return "DocTrailing"
	}
	return "Trivia?"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsDoc reports whether the trivia is a documentation comment.
func (tv Trivia) IsDoc() bool {
	return tv.Kind == TriviaDocBlock || tv.Kind == TriviaDocTrailing
}

// DocBody strips the comment delimiters and the leading " * " gutter of a
// documentation comment. Blank lines are kept.
func (tv Trivia) DocBody() string {
	text := tv.Text
	switch tv.Kind {
	case TriviaDocTrailing:
		text = strings.TrimPrefix(text, "/**<")
	case TriviaDocBlock:
		text = strings.TrimPrefix(text, "/**")
	default:
		return ""
	}
	text = strings.TrimSuffix(text, "*/")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "*" {
			line = ""
		} else if strings.HasPrefix(line, "* ") {
			line = line[2:]
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
