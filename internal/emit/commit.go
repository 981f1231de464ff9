package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sdl3gen/internal/diag"
)

// Commit replaces dir with the generated files. The new tree is written
// next to dir and swapped in by rename, so readers see either the old or
// the new output, never a mix.
func (o *Output) Commit(dir string) error {
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return writeError(dir, err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".tmp-*")
	if err != nil {
		return writeError(dir, err)
	}
	if err := o.writeTree(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		_ = os.RemoveAll(tmp)
		return writeError(tmp, err)
	}

	var old string
	if _, err := os.Stat(dir); err == nil {
		old = dir + ".old-" + time.Now().Format("20060102150405")
		if err := os.Rename(dir, old); err != nil {
			_ = os.RemoveAll(tmp)
			return writeError(dir, err)
		}
	}
	if err := os.Rename(tmp, dir); err != nil {
		if old != "" {
			_ = os.Rename(old, dir)
		}
		_ = os.RemoveAll(tmp)
		return writeError(dir, err)
	}
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			return writeError(old, err)
		}
	}
	return nil
}

func (o *Output) writeTree(root string) error {
	for _, f := range o.Files {
		p := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return writeError(p, err)
		}
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			return writeError(p, err)
		}
	}
	return nil
}

func writeError(path string, err error) error {
	return diag.NewError(diag.IOWriteError, noSpan, fmt.Sprintf("write %s: %v", path, err))
}
