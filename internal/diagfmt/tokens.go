package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Leading []string    `json:"leading,omitempty"`
}

// FormatTokensPretty prints one token per line with its position and the
// kinds of its leading trivia.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)

		var leading []string
		for _, trivia := range tok.Leading {
			leading = append(leading, trivia.Kind.String())
		}

		fmt.Fprintf(w, "%3d: %-15s", i+1, tok.Kind.String())
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d",
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col)
		if len(leading) > 0 {
			fmt.Fprintf(w, " (leading: %s)", strings.Join(leading, ", "))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		tokenOut := TokenOutput{
			Kind: tok.Kind.String(),
			Text: tok.Text,
			Span: tok.Span,
		}
		for _, trivia := range tok.Leading {
			tokenOut.Leading = append(tokenOut.Leading, trivia.Kind.String())
		}
		output = append(output, tokenOut)

		if tok.Kind == token.EOF {
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
