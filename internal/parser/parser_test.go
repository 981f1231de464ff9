package parser

import (
	"testing"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
	"sdl3gen/internal/testkit"
)

const powerHeader = `/*
  Simple DirectMedia Layer
  Copyright (C) 1997-2025 Sam Lantinga <slouken@libsdl.org>
*/

#ifndef SDL_power_h_
#define SDL_power_h_

/**
 * # CategoryPower
 *
 * SDL power management routines.
 */

#include <SDL3/SDL_stdinc.h>
#include <SDL3/SDL_error.h>

#include <SDL3/SDL_begin_code.h>
/* Set up for C function definitions, even when using C++ */
#ifdef __cplusplus
extern "C" {
#endif

/**
 * The basic state for the system's power supply.
 *
 * These are results returned by SDL_GetPowerInfo().
 *
 * \since This enum is available since SDL 3.2.0.
 */
typedef enum SDL_PowerState
{
    SDL_POWERSTATE_ERROR = -1,   /**< error determining power status */
    SDL_POWERSTATE_UNKNOWN,      /**< cannot determine power status */
    SDL_POWERSTATE_ON_BATTERY,   /**< Not plugged in, running on the battery */
    SDL_POWERSTATE_NO_BATTERY,   /**< Plugged in, no battery available */
    SDL_POWERSTATE_CHARGING,     /**< Plugged in, charging battery */
    SDL_POWERSTATE_CHARGED       /**< Plugged in, battery charged */
} SDL_PowerState;

/**
 * Get the current power supply details.
 *
 * \param seconds a pointer filled in with the seconds of battery life left,
 *                or NULL to ignore.
 * \param percent a pointer filled in with the percentage of battery life
 *                left, between 0 and 100, or NULL to ignore.
 * \returns the current battery state or ` + "`SDL_POWERSTATE_ERROR`" + ` on failure;
 *          call SDL_GetError() for more information.
 *
 * \threadsafety It is safe to call this function from any thread.
 *
 * \since This function is available since SDL 3.2.0.
 */
extern SDL_DECLSPEC SDL_PowerState SDLCALL SDL_GetPowerInfo(int *seconds, int *percent);

/* Ends C function definitions when using C++ */
#ifdef __cplusplus
}
#endif
#include <SDL3/SDL_close_code.h>

#endif /* SDL_power_h_ */
`

func parseSource(t *testing.T, module, src string) (*ast.File, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("SDL_"+module+".h", []byte(src))
	return ParseFile(fs.Get(id), module, Options{Library: "SDL3"})
}

func mustParse(t *testing.T, module, src string) *ast.File {
	t.Helper()
	f, err := parseSource(t, module, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return f
}

func declsOf[T ast.Decl](f *ast.File) []T {
	var out []T
	for _, d := range f.Decls {
		if x, ok := d.(T); ok {
			out = append(out, x)
		}
	}
	return out
}

func TestParsePowerHeader(t *testing.T) {
	f := mustParse(t, "power", powerHeader)

	if f.Module != "power" || f.Library != "SDL3" {
		t.Fatalf("module/library = %q/%q", f.Module, f.Library)
	}
	if f.Doc == nil || f.Doc.Text != "SDL power management routines." {
		t.Fatalf("module doc = %#v", f.Doc)
	}

	incs := declsOf[*ast.Include](f)
	wantIncs := []string{"SDL3/SDL_stdinc.h", "SDL3/SDL_error.h", "SDL3/SDL_begin_code.h", "SDL3/SDL_close_code.h"}
	if len(incs) != len(wantIncs) {
		t.Fatalf("includes = %d, want %d", len(incs), len(wantIncs))
	}
	for i, inc := range incs {
		if inc.Path != wantIncs[i] || !inc.System {
			t.Fatalf("include %d = %q (system=%v)", i, inc.Path, inc.System)
		}
	}

	enums := declsOf[*ast.EnumDecl](f)
	if len(enums) != 1 {
		t.Fatalf("enums = %d, want 1", len(enums))
	}
	e := enums[0]
	if e.Name() != "SDL_PowerState" || e.Tag.Name != "SDL_PowerState" {
		t.Fatalf("enum name = %q", e.Name())
	}
	if e.Module != "power" || !e.Cond.IsZero() {
		t.Fatalf("enum module/cond = %q/%q", e.Module, e.Cond.String())
	}
	if v := e.Since(); v == nil || *v != (ast.Version{Major: 3, Minor: 2, Patch: 0}) {
		t.Fatalf("enum since = %v", v)
	}
	wantVals := []string{
		"SDL_POWERSTATE_ERROR", "SDL_POWERSTATE_UNKNOWN", "SDL_POWERSTATE_ON_BATTERY",
		"SDL_POWERSTATE_NO_BATTERY", "SDL_POWERSTATE_CHARGING", "SDL_POWERSTATE_CHARGED",
	}
	if len(e.Values) != len(wantVals) {
		t.Fatalf("values = %d, want %d", len(e.Values), len(wantVals))
	}
	for i, v := range e.Values {
		if v.Name.Name != wantVals[i] {
			t.Fatalf("value %d = %q, want %q", i, v.Name.Name, wantVals[i])
		}
		if v.Doc == nil {
			t.Fatalf("value %s has no doc", v.Name.Name)
		}
	}
	if got := ast.ExprString(e.Values[0].Value); got != "-1" {
		t.Fatalf("first value = %q", got)
	}
	if e.Values[1].Value != nil {
		t.Fatalf("implicit value should be nil")
	}
	if got := e.Values[5].Doc.Text; got != "Plugged in, battery charged" {
		t.Fatalf("last value doc = %q", got)
	}

	fns := declsOf[*ast.FuncDecl](f)
	if len(fns) != 1 {
		t.Fatalf("functions = %d, want 1", len(fns))
	}
	fn := fns[0]
	if fn.Name.Name != "SDL_GetPowerInfo" || fn.Inline {
		t.Fatalf("function = %q inline=%v", fn.Name.Name, fn.Inline)
	}
	if got := fn.Type.String(); got != "SDL_PowerState (int *, int *)" {
		t.Fatalf("function type = %q", got)
	}
	if fn.Type.Params[0].Name.Name != "seconds" || fn.Type.Params[1].Name.Name != "percent" {
		t.Fatalf("param names wrong")
	}
	if fn.Doc == nil || fn.Since() == nil {
		t.Fatalf("function doc/since missing")
	}

	// source order: includes, enum, function, closing include
	if _, ok := f.Decls[len(f.Decls)-1].(*ast.Include); !ok {
		t.Fatalf("last decl = %T, want the closing include", f.Decls[len(f.Decls)-1])
	}
	if len(f.Decls) != 6 {
		t.Fatalf("decls = %d, want 6", len(f.Decls))
	}
}

func TestParseDefines(t *testing.T) {
	src := `
#define SDL_HAT_CENTERED    0x00
#define SDL_HAT_UP          0x01 /**< up */
#define SDL_HAT_RIGHTUP     (SDL_HAT_RIGHT|SDL_HAT_UP)
#define SDL_BUTTON_MASK(X)  (1u << ((X)-1))
#define SDL_arraysize(array) (sizeof(array)/sizeof(array[0]))
#define SDL_EMPTY
#define SDL_INIT_INTERFACE(iface) { SDL_zerop(iface); }
`
	f := mustParse(t, "joystick", src)
	defs := f.Defines()
	if len(defs) != 5 {
		t.Fatalf("defines = %d, want 5", len(defs))
	}

	hat := defs[0]
	lit, ok := hat.Value.(*ast.Literal)
	if !ok || lit.Int != 0 || lit.Type != ast.PrimInt || lit.Raw != "0x00" {
		t.Fatalf("SDL_HAT_CENTERED = %#v", hat.Value)
	}
	if hat.Module != "joystick" {
		t.Fatalf("module = %q", hat.Module)
	}
	if defs[1].Trailing == nil || defs[1].Trailing.Text != "up" {
		t.Fatalf("trailing doc = %#v", defs[1].Trailing)
	}
	if got := ast.ExprString(defs[2].Value); got != "(SDL_HAT_RIGHT | SDL_HAT_UP)" {
		t.Fatalf("rightup = %q", got)
	}
	mask := defs[3]
	if !mask.FuncLike || len(mask.Params) != 1 || mask.Params[0].Name != "X" {
		t.Fatalf("SDL_BUTTON_MASK params = %#v", mask.Params)
	}
	if defs[4].Name.Name != "SDL_EMPTY" || defs[4].Value != nil {
		t.Fatalf("empty define = %#v", defs[4])
	}

	skipped := declsOf[*ast.Skipped](f)
	if len(skipped) != 2 {
		t.Fatalf("skipped = %d, want 2", len(skipped))
	}
}

func TestParseConditionals(t *testing.T) {
	src := `
#ifdef SDL_PLATFORM_WINDOWS
extern SDL_DECLSPEC bool SDLCALL SDL_SetWindowsMessageHook(int x);
#else
#define SDL_NOT_WINDOWS 1
#endif
#if 0
#define SDL_NEVER 1
#endif
#ifdef SDL_WIKI_DOCUMENTATION_SECTION
#define SDL_WIKI_ONLY 1
#else
#define SDL_REAL 1
#endif
#if defined(SDL_PLATFORM_APPLE) || defined(__cplusplus)
#define SDL_APPLE 1
#elif defined(SDL_PLATFORM_LINUX)
#define SDL_LINUX 1
#endif
`
	f := mustParse(t, "system", src)
	conds := map[string]string{}
	for _, d := range f.Decls {
		switch x := d.(type) {
		case *ast.Define:
			conds[x.Name.Name] = x.Cond.String()
		case *ast.FuncDecl:
			conds[x.Name.Name] = x.Cond.String()
		}
	}
	want := map[string]string{
		"SDL_SetWindowsMessageHook": "defined(SDL_PLATFORM_WINDOWS)",
		"SDL_NOT_WINDOWS":           "!defined(SDL_PLATFORM_WINDOWS)",
		"SDL_REAL":                  "",
		"SDL_APPLE":                 "defined(SDL_PLATFORM_APPLE)",
		"SDL_LINUX":                 "!defined(SDL_PLATFORM_APPLE) && defined(SDL_PLATFORM_LINUX)",
	}
	if len(conds) != len(want) {
		t.Fatalf("declarations = %v", conds)
	}
	for name, c := range want {
		got, ok := conds[name]
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if got != c {
			t.Fatalf("%s cond = %q, want %q", name, got, c)
		}
	}
}

func TestParseRecordsAndTypedefs(t *testing.T) {
	src := `
/**
 * A rectangle, with the origin at the upper left (using integers).
 *
 * \since This struct is available since SDL 3.2.0.
 */
typedef struct SDL_Rect
{
    int x, y;   /**< position */
    int w, h;
} SDL_Rect;

typedef struct SDL_Window SDL_Window;

typedef void (SDLCALL *SDL_HintCallback)(void *userdata, const char *name, const char *oldValue, const char *newValue);

typedef Uint32 SDL_InitFlags;

typedef struct SDL_VirtualJoystickDesc
{
    Uint16 type;
    Uint8 padding[2];
    union {
        int a;
        float b;
    } u;
    unsigned int bits : 3;
} SDL_VirtualJoystickDesc;

struct SDL_Opaque;
`
	f := mustParse(t, "rect", src)
	recs := declsOf[*ast.RecordDecl](f)
	if len(recs) != 4 {
		t.Fatalf("records = %d, want 4", len(recs))
	}

	rect := recs[0]
	if rect.Name() != "SDL_Rect" || rect.Opaque || len(rect.Fields) != 4 {
		t.Fatalf("SDL_Rect = %q opaque=%v fields=%d", rect.Name(), rect.Opaque, len(rect.Fields))
	}
	for i, name := range []string{"x", "y", "w", "h"} {
		fld := rect.Fields[i]
		if fld.Name.Name != name || fld.Type.String() != "int" {
			t.Fatalf("field %d = %s %s", i, fld.Type, fld.Name.Name)
		}
	}
	if rect.Fields[0].Doc == nil || rect.Fields[1].Doc == nil || rect.Fields[1].Doc.Text != "position" {
		t.Fatalf("trailing doc should apply to x and y")
	}
	if rect.Fields[2].Doc != nil {
		t.Fatalf("w has no doc")
	}
	if rect.Since() == nil {
		t.Fatalf("SDL_Rect since missing")
	}

	win := recs[1]
	if !win.Opaque || win.Name() != "SDL_Window" || win.Tag.Name != "SDL_Window" {
		t.Fatalf("SDL_Window = %#v", win)
	}

	desc := recs[2]
	if len(desc.Fields) != 4 {
		t.Fatalf("desc fields = %d", len(desc.Fields))
	}
	if got := desc.Fields[1].Type.String(); got != "Uint8[2]" {
		t.Fatalf("padding type = %q", got)
	}
	u := desc.Fields[2]
	if u.Record == nil || u.Record.Kind != ast.RecordUnion || len(u.Record.Fields) != 2 || u.Name.Name != "u" {
		t.Fatalf("union member = %#v", u)
	}
	bits := desc.Fields[3]
	if bits.Type.String() != "unsigned int" || ast.ExprString(bits.Bits) != "3" {
		t.Fatalf("bit-field = %s : %s", bits.Type, ast.ExprString(bits.Bits))
	}

	fwd := recs[3]
	if !fwd.Opaque || fwd.Typedef != nil || fwd.Name() != "SDL_Opaque" {
		t.Fatalf("forward struct = %#v", fwd)
	}

	tds := declsOf[*ast.Typedef](f)
	if len(tds) != 2 {
		t.Fatalf("typedefs = %d, want 2", len(tds))
	}
	if tds[0].Name.Name != "SDL_HintCallback" {
		t.Fatalf("typedef 0 = %q", tds[0].Name.Name)
	}
	if got := tds[0].Type.String(); got != "void (*)(void *, const char *, const char *, const char *)" {
		t.Fatalf("callback type = %q", got)
	}
	if got := tds[1].Type.String(); tds[1].Name.Name != "SDL_InitFlags" || got != "Uint32" {
		t.Fatalf("SDL_InitFlags = %q", got)
	}
}

func TestParseFunctionForms(t *testing.T) {
	src := `
extern SDL_DECLSPEC int SDLCALL SDL_snprintf(SDL_OUT_Z_CAP(maxlen) char *text, size_t maxlen, SDL_PRINTF_FORMAT_STRING const char *fmt, ...) SDL_PRINTF_VARARG_FUNC(3);
extern SDL_DECLSPEC SDL_MALLOC void * SDLCALL SDL_malloc(size_t size);
extern SDL_DECLSPEC const char * SDLCALL SDL_GetError(void);
SDL_FORCE_INLINE bool SDL_PointInRect(const SDL_Point *p, const SDL_Rect *r)
{
    return ( p && r && (p->x >= r->x) ) ? true : false;
}
SDL_COMPILE_TIME_ASSERT(uint8, sizeof(Uint8) == 1);
extern SDL_DECLSPEC int SDL_some_variable;
`
	f := mustParse(t, "stdinc", src)
	fns := declsOf[*ast.FuncDecl](f)
	if len(fns) != 4 {
		t.Fatalf("functions = %d, want 4", len(fns))
	}

	snp := fns[0]
	if !snp.Type.Variadic || len(snp.Type.Params) != 3 {
		t.Fatalf("SDL_snprintf variadic=%v params=%d", snp.Type.Variadic, len(snp.Type.Params))
	}
	if a := snp.Type.Params[0].Attrs; len(a) != 1 || a[0].Name.Name != "SDL_OUT_Z_CAP" || a[0].Args.Len() != 1 {
		t.Fatalf("text attrs = %#v", a)
	}
	if a := snp.Type.Params[2].Attrs; len(a) != 1 || a[0].Name.Name != "SDL_PRINTF_FORMAT_STRING" {
		t.Fatalf("fmt attrs = %#v", a)
	}
	if len(snp.Attrs) != 1 || snp.Attrs[0].Name.Name != "SDL_PRINTF_VARARG_FUNC" || snp.Attrs[0].Args.Len() != 1 {
		t.Fatalf("function attrs = %#v", snp.Attrs)
	}

	mal := fns[1]
	if len(mal.Attrs) != 1 || mal.Attrs[0].Name.Name != "SDL_MALLOC" {
		t.Fatalf("SDL_malloc attrs = %#v", mal.Attrs)
	}
	if got := mal.Type.Result.String(); got != "void *" {
		t.Fatalf("SDL_malloc result = %q", got)
	}
	if got := fns[2].Type.String(); got != "const char * (void)" {
		t.Fatalf("SDL_GetError type = %q", got)
	}
	if !fns[3].Inline || fns[3].Name.Name != "SDL_PointInRect" {
		t.Fatalf("inline function = %#v", fns[3])
	}

	skipped := declsOf[*ast.Skipped](f)
	if len(skipped) != 2 {
		t.Fatalf("skipped = %d, want 2", len(skipped))
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"dangling endif", "#endif\n", diag.SynDanglingEndif},
		{"stray brace", "}\n", diag.SynUnexpectedToken},
		{"stray brace after declaration", "int x;\n}\n", diag.SynUnexpectedToken},
		{"dangling else", "#else\n", diag.SynDanglingElse},
		{"else after else", "#ifdef X\n#else\n#else\n#endif\n", diag.SynDanglingElse},
		{"unterminated conditional", "#ifdef X\n#define Y 1\n", diag.SynUnterminatedCond},
		{"unclosed struct", "typedef struct X { int a;\n", diag.SynUnclosedBrace},
		{"unclosed enum", "typedef enum { A, B\n", diag.SynUnclosedBrace},
		{"missing semicolon", "extern int f(void)\nextern int g(void);\n", diag.SynExpectSemicolon},
		{"bad literal suffix", "#define BAD 10uu\n", diag.SynBadLiteralSuffix},
		{"unterminated string", "#define S \"abc\n", diag.LexUnterminatedString},
		{"variadic not last", "extern void f(..., int x);\n", diag.SynVariadicMustBeLast},
		{"unterminated statement", "int x\n", diag.SynUnterminatedDecl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseSource(t, "test", tt.src)
			if err == nil {
				t.Fatalf("expected error, got %d decls", len(f.Decls))
			}
			if got := errCode(t, err); got != tt.code {
				t.Fatalf("code = %s, want %s (%v)", got.ID(), tt.code.ID(), err)
			}
		})
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		text string
		want *ast.Version
	}{
		{"\\since This function is available since SDL 3.2.0.", &ast.Version{Major: 3, Minor: 2, Patch: 0}},
		{"Docs.\n\n\\since This enum is available since SDL 3.4.0.\n", &ast.Version{Major: 3, Minor: 4, Patch: 0}},
		{"\\since This macro is available since SDL_ttf 3.0.0.", &ast.Version{Major: 3, Minor: 0, Patch: 0}},
		{"No version here.", nil},
		{"\\since forever", nil},
	}
	for _, tt := range tests {
		got := parseSince(tt.text)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseSince(%q) = %v, want nil", tt.text, got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseSince(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"include/SDL3/SDL_joystick.h":        "joystick",
		"SDL_power.h":                        "power",
		"include/SDL3_ttf/SDL_ttf.h":         "ttf",
		"include/SDL3/SDL_GPU.h":             "gpu",
		"/abs/include/SDL3/SDL_properties.h": "properties",
	}
	for path, want := range tests {
		if got := ModuleName(path); got != want {
			t.Errorf("ModuleName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestParsedSpansAreConsistent(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("SDL_power.h", []byte(powerHeader))
	f, err := ParseFile(fs.Get(id), "power", Options{Library: "SDL3"})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if err := testkit.CheckSpanInvariants(f, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}
