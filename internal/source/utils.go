package source

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// normalizeCRLF rewrites every \r\n to \n; lone \r bytes are kept.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("line offset overflow: %w", err))
			}
			out = append(out, off)
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// k = number of newlines strictly before off
	k := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	if k == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	startOff := lineIdx[k-1] + 1
	line, err := safecast.Conv[uint32](k + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line, Col: off - startOff + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns the cleaned absolute form of p.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath renders target relative to baseDir. Paths that would escape
// baseDir are returned in absolute form instead.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the last path element.
func BaseName(p string) string {
	return filepath.Base(p)
}
