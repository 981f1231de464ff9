package diagfmt

import (
	"sdl3gen/internal/source"
)

// displayPath renders the path of span's file, or "" for spans without one.
func displayPath(span source.Span, fs *source.FileSet, mode PathMode) string {
	if !hasSource(span, fs) {
		return ""
	}
	return fs.Get(span.File).FormatPath(mode.flag(), fs.BaseDir())
}

func hasSource(span source.Span, fs *source.FileSet) bool {
	return fs != nil && span.HasFile() && int(span.File) < fs.Len()
}
