package token_test

import (
	"testing"

	"sdl3gen/internal/token"
)

func TestDocBody(t *testing.T) {
	tests := []struct {
		name string
		tv   token.Trivia
		want string
	}{
		{
			name: "block",
			tv:   token.Trivia{Kind: token.TriviaDocBlock, Text: "/**\n * Get the current power supply details.\n *\n * \\since This function is available since SDL 3.2.0.\n */"},
			want: "Get the current power supply details.\n\n\\since This function is available since SDL 3.2.0.",
		},
		{
			name: "trailing",
			tv:   token.Trivia{Kind: token.TriviaDocTrailing, Text: "/**< error determining power status */"},
			want: "error determining power status",
		},
		{
			name: "indent kept",
			tv:   token.Trivia{Kind: token.TriviaDocBlock, Text: "/**\n * ```c\n *     int x;\n * ```\n */"},
			want: "```c\n    int x;\n```",
		},
		{
			name: "plain comment",
			tv:   token.Trivia{Kind: token.TriviaBlockComment, Text: "/* not docs */"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tv.DocBody(); got != tt.want {
				t.Errorf("DocBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
