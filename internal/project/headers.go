package project

import (
	"path"
	"strings"

	"fortio.org/safecast"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/parser"
	"sdl3gen/internal/source"
)

// IncludeMeta is one #include of another generated header.
type IncludeMeta struct {
	Module string
	Span   source.Span
}

// HeaderMeta is the include-graph view of one parsed header.
type HeaderMeta struct {
	Module      string
	Path        string
	Span        source.Span
	Includes    []IncludeMeta // in source order
	ContentHash Digest        // hash of the header text
	ModuleHash  Digest        // content hash folded with included headers
}

// HeaderMetaOf collects the includes of f that name library headers.
// Includes of system or platform headers are dropped.
func HeaderMetaOf(f *ast.File, file *source.File) HeaderMeta {
	meta := HeaderMeta{Module: f.Module, Path: f.Path}
	if file != nil {
		meta.ContentHash = Digest(file.Hash)
		if end, err := safecast.Conv[uint32](len(file.Content)); err == nil {
			meta.Span = source.Span{File: file.ID, End: end}
		}
	}
	for _, d := range f.Decls {
		inc, ok := d.(*ast.Include)
		if !ok {
			continue
		}
		mod, ok := IncludedModule(inc.Path)
		if !ok || mod == f.Module {
			continue
		}
		meta.Includes = append(meta.Includes, IncludeMeta{Module: mod, Span: inc.Span})
	}
	return meta
}

// IncludedModule maps an include path such as "SDL3/SDL_video.h" to its
// module. Only SDL_*.h headers qualify.
func IncludedModule(p string) (string, bool) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if !strings.HasPrefix(base, "SDL_") || !strings.HasSuffix(base, ".h") {
		return "", false
	}
	return parser.ModuleName(base), true
}
