package driver

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/parser"
	"sdl3gen/internal/source"
)

// DefaultExclude lists headers that carry no bindable declarations or only
// compiler plumbing.
var DefaultExclude = []string{
	"SDL.h",
	"SDL_begin_code.h",
	"SDL_close_code.h",
	"SDL_egl.h",
	"SDL_intrin.h",
	"SDL_main_impl.h",
	"SDL_oldnames.h",
	"SDL_opengl*.h",
	"SDL_platform_defines.h",
	"SDL_test*.h",
}

// Header is one discovered input file.
type Header struct {
	Path    string
	Module  string
	Library string // name of the header directory, e.g. "SDL3"
}

// Discover lists the *.h files directly under root in name order, minus
// DefaultExclude and extra. Two headers mapping to one module are a
// ProjDuplicateModule error; an empty result is ProjNoHeaders.
func Discover(root string, extra []string) ([]Header, error) {
	exclude := slices.Concat(DefaultExclude, extra)
	library := filepath.Base(filepath.Clean(root))

	var headers []Header
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".h") || excluded(name, exclude) {
			return nil
		}
		headers = append(headers, Header{Path: path, Module: parser.ModuleName(name), Library: library})
		return nil
	})
	if err != nil {
		return nil, diag.NewError(diag.IOLoadFileError, source.Nowhere, fmt.Sprintf("cannot list headers in %s: %v", root, err))
	}
	if len(headers) == 0 {
		return nil, diag.NewError(diag.ProjNoHeaders, source.Nowhere, fmt.Sprintf("no headers found in %s", root))
	}

	slices.SortFunc(headers, func(a, b Header) int { return strings.Compare(a.Path, b.Path) })
	seen := make(map[string]string, len(headers))
	for _, h := range headers {
		if prev, dup := seen[h.Module]; dup {
			return nil, diag.NewError(diag.ProjDuplicateModule, source.Nowhere,
				fmt.Sprintf("headers %s and %s both map to module %q", prev, h.Path, h.Module))
		}
		seen[h.Module] = h.Path
	}
	return headers, nil
}

func excluded(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}
