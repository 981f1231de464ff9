package fuzztests

import (
	"testing"
	"time"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/parser"
	"sdl3gen/internal/patch"
	"sdl3gen/internal/source"
	"sdl3gen/internal/testkit"
)

// parseTimeout bounds one input; exceeding it means the parser loops.
const parseTimeout = 5 * time.Second

func parseInput(t *testing.T, input []byte) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("SDL_fuzz.h", input)
	file := fs.Get(fileID)

	bag := diag.NewBag(128)
	f, err := parser.ParseFile(file, "fuzz", parser.Options{Reporter: diag.BagReporter{Bag: bag}, Library: "SDL3"})
	if err != nil {
		return
	}
	if err := testkit.CheckSpanInvariants(f, file); err != nil {
		t.Fatalf("span invariants: %v\ninput: %q", err, truncateForLog(input, 200))
	}
	patch.Rules.ApplyFile(f)
}

func FuzzParseHeader(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		parseInput(t, clampInput(input))
	})
}

// FuzzParserNoHang fails when a single parse outlives parseTimeout.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("typedef struct {"))
	f.Add([]byte("#if\n#if\n#if\n"))
	f.Add([]byte("extern SDL_DECLSPEC void SDLCALL SDL_F(int a,"))
	f.Add([]byte("enum { A = (((((((((1"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			fileID := fs.AddVirtual("SDL_fuzz.h", input)
			_, _ = parser.ParseFile(fs.Get(fileID), "fuzz", parser.Options{Library: "SDL3"})
		}()

		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected after %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
