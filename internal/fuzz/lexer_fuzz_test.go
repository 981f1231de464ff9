package fuzztests

import (
	"testing"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/lexer"
	"sdl3gen/internal/source"
	"sdl3gen/internal/token"
)

const maxFuzzInput = 1 << 16

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("SDL_fuzz.h", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		var prevEnd uint32
		for range len(file.Content) + 2 {
			tok := lx.Next()
			if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start {
				t.Fatalf("token %s has span %v after offset %d", tok.Kind, tok.Span, prevEnd)
			}
			prevEnd = tok.Span.End
			if tok.Kind == token.EOF {
				return
			}
		}
		t.Fatalf("lexer did not reach EOF on %d bytes", len(file.Content))
	})
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
