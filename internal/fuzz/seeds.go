package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

// snippetSeeds cover constructs the test headers do not.
var snippetSeeds = []string{
	"",
	"#define SDL_WINDOW_FULLSCREEN SDL_UINT64_C(0x0000000000000001)\n",
	"#if defined(SDL_PLATFORM_WINDOWS) && !defined(__WINRT__)\nint x;\n#elif SDL_VERSION_ATLEAST(3, 2, 0)\n#else\n#endif\n",
	"typedef union SDL_Event { Uint32 type; SDL_CommonEvent common; Uint8 padding[128]; } SDL_Event;\n",
	"typedef struct SDL_Bits { Uint32 a : 3; Uint32 : 0; struct { int x, y; } pos; } SDL_Bits;\n",
	"typedef int (SDLCALL *SDL_main_func)(int argc, char *argv[]);\n",
	"extern SDL_DECLSPEC int SDLCALL SDL_snprintf(SDL_OUT_Z_CAP(maxlen) char *text, size_t maxlen, SDL_PRINTF_FORMAT_STRING const char *fmt, ...) SDL_PRINTF_VARARG_FUNC(3);\n",
	"SDL_FORCE_INLINE bool SDL_PointInRect(const SDL_Point *p, const SDL_Rect *r) { return ((p->x >= r->x)); }\n",
	"#define SDL_PROP_WINDOW_CREATE_TITLE_STRING \"SDL.window.create.title\"\n",
	"/**< trailing */ /* unterminated",
	"'\\x",
	"#define A (B\n#define B A)\n",
	"}",
	"extern \"C\" {\nint x;\n}\n}\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range snippetSeeds {
		f.Add([]byte(s))
	}
	matches, err := filepath.Glob(filepath.Join("..", "driver", "testdata", "SDL3", "*.h"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- path comes from repository testdata
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
