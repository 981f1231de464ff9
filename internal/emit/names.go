package emit

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/model"
)

// typeName turns a C type or function name into a Go identifier:
// SDL_GPUDevice -> GPUDevice, TTF_Font -> TTFFont. Acronyms survive because
// only the library prefix is touched.
func typeName(cname string) string {
	lib, rest := splitLibrary(cname)
	rest = strings.ReplaceAll(rest, "_", "")
	if lib == "SDL" || lib == "" {
		return exported(rest)
	}
	return lib + exported(rest)
}

// constName turns a SCREAMING_SNAKE macro name into a Go identifier:
// SDL_WINDOWPOS_CENTERED -> WindowposCentered.
func constName(cname string) string {
	lib, rest := splitLibrary(cname)
	name := strcase.ToCamel(strings.ToLower(rest))
	switch lib {
	case "SDL", "":
		return exported(name)
	case "SDLK":
		return "K" + name
	}
	return lib + name
}

// valueName names a group member after its group: PowerState + ON_BATTERY.
func valueName(g *model.Group, goGroup string, v *model.GroupValue) string {
	base := goGroup
	if g.Kind == model.GroupFlags {
		if b, ok := strings.CutSuffix(base, "Flags"); ok && b != "" {
			base = b
		}
	}
	return base + strcase.ToCamel(strings.ToLower(v.Short))
}

func splitLibrary(cname string) (lib, rest string) {
	for _, p := range []string{"SDLK_", "SDL_", "TTF_", "IMG_", "MIX_", "NET_"} {
		if r, ok := strings.CutPrefix(cname, p); ok && r != "" {
			return strings.TrimSuffix(p, "_"), r
		}
	}
	return "", cname
}

func exported(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	if !unicode.IsLetter(r[0]) {
		return "X" + string(r)
	}
	return string(r)
}

// fieldName exports a struct member name.
func fieldName(cname string, index int) string {
	if cname == "" {
		return fmt.Sprintf("Anon%d", index)
	}
	return exported(cname)
}

// paramName keeps C parameter names unless they clash with Go keywords or
// the identifiers generated code relies on.
func paramName(cname string, index int) string {
	switch {
	case cname == "":
		return fmt.Sprintf("arg%d", index)
	case token.IsKeyword(cname), reservedParams[cname]:
		return "_" + cname
	}
	return cname
}

var reservedParams = map[string]bool{
	"unsafe": true, "string": true, "len": true, "cap": true, "new": true,
	"make": true, "copy": true, "append": true, "error": true, "bool": true,
	"byte": true, "rune": true, "int": true, "uint": true, "uintptr": true,
	"float32": true, "float64": true, "nil": true, "true": true, "false": true,
}

// goFileName keeps module files clear of the _test suffix and GOOS/GOARCH
// suffixes the go tool interprets.
func goFileName(module string) string {
	name := strings.ToLower(module)
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		suffix := name[i+1:]
		if suffix == "test" || knownOS[suffix] || knownArch[suffix] {
			name += "_sdl"
		}
	}
	return name
}

var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"illumos": true, "ios": true, "js": true, "linux": true, "netbsd": true,
	"openbsd": true, "plan9": true, "solaris": true, "wasip1": true, "windows": true,
}

var knownArch = map[string]bool{
	"386": true, "amd64": true, "arm": true, "arm64": true, "loong64": true,
	"mips": true, "mips64": true, "ppc64": true, "ppc64le": true, "riscv64": true,
	"s390x": true, "wasm": true,
}

// nameTable is the package scope of the generated bindings.
type nameTable struct {
	names map[string]nameEntry
}

type nameEntry struct {
	cname  string
	module string
	gate   string
}

func newNameTable() *nameTable {
	return &nameTable{names: make(map[string]nameEntry, 4096)}
}

// claim reserves goName for cname. The same C name may claim its Go name
// again from a different build gate.
func (t *nameTable) claim(goName, cname, module, gate string) error {
	prev, ok := t.names[goName]
	if !ok {
		t.names[goName] = nameEntry{cname: cname, module: module, gate: gate}
		return nil
	}
	if prev.cname == cname && prev.gate != gate {
		return nil
	}
	return diag.NewError(diag.EmtNameCollision, noSpan,
		fmt.Sprintf("module %s: Go name %s of %s collides with %s from module %s", module, goName, cname, prev.cname, prev.module))
}
