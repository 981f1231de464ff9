package model

import (
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
)

// libraryPrefixes are the name prefixes of the SDL family, longest first.
var libraryPrefixes = []string{"SDLK_", "SDL_", "TTF_", "IMG_", "MIX_", "NET_"}

// libraryPrefix returns the library prefix of name, or "".
func libraryPrefix(name string) string {
	for _, p := range libraryPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			return p
		}
	}
	return ""
}

// valuePrefix derives the value prefix of a group type:
// SDL_InitFlags -> SDL_INIT_, SDL_WindowID -> SDL_WINDOW_.
func valuePrefix(typeName string) string {
	lib := libraryPrefix(typeName)
	stem := strings.TrimPrefix(typeName, lib)
	for _, suffix := range []string{"Flags", "ID"} {
		if s, ok := strings.CutSuffix(stem, suffix); ok && s != "" {
			stem = s
			break
		}
	}
	return lib + strcase.ToScreamingSnake(stem) + "_"
}

// matchesPrefix accepts name when it starts with prefix, also when the two
// disagree on word boundaries (SDL_GPU_TEXTUREUSAGE_ vs SDL_GPU_TEXTURE_USAGE_).
func matchesPrefix(name, prefix string) bool {
	if strings.HasPrefix(name, prefix) {
		return true
	}
	n, p := collapse(name), collapse(prefix)
	return len(n) > len(p) && strings.HasPrefix(n, p)
}

func collapse(s string) string { return strings.ReplaceAll(s, "_", "") }

// commonPrefix returns the longest prefix ending in '_' shared by all names
// that leaves every name a non-empty remainder.
func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, n := range names[1:] {
		i := 0
		for i < len(prefix) && i < len(n) && prefix[i] == n[i] {
			i++
		}
		prefix = prefix[:i]
	}
	for {
		cut := strings.LastIndexByte(prefix, '_')
		if cut < 0 {
			return ""
		}
		prefix = prefix[:cut+1]
		if !slices.Contains(names, prefix) {
			return prefix
		}
		prefix = prefix[:cut]
	}
}

// assignShortNames sets Prefix and the Short name of every value: the
// derived prefix when all values carry it, else their common prefix. A lone
// value only loses its library prefix.
func assignShortNames(g *Group) {
	names := make([]string, len(g.Values))
	for i, v := range g.Values {
		names[i] = v.Name
	}
	derived := valuePrefix(g.Name)
	prefix := derived
	for _, n := range names {
		if !strings.HasPrefix(n, derived) || n == derived {
			prefix = ""
			break
		}
	}
	if prefix == "" {
		if len(names) == 1 {
			prefix = libraryPrefix(names[0])
		} else {
			prefix = commonPrefix(names)
		}
	}
	g.Prefix = prefix
	for _, v := range g.Values {
		v.Short = strings.TrimPrefix(v.Name, prefix)
	}
}

// shortName strips a fixed prefix and any of the given suffixes.
func shortName(name, prefix string, suffixes ...string) string {
	s := strings.TrimPrefix(name, prefix)
	for _, suf := range suffixes {
		if t, ok := strings.CutSuffix(s, suf); ok {
			return t
		}
	}
	return s
}
