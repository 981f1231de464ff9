package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("SDL_power.h", []byte("typedef int A;"), 0)
	id2 := fs.Add("SDL_power.h", []byte("typedef int B;"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("ids = %d,%d, want 0,1", id1, id2)
	}

	latest, ok := fs.GetLatest("SDL_power.h")
	if !ok || latest != id2 {
		t.Errorf("GetLatest() = %d,%v, want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "typedef int A;" {
		t.Errorf("first version content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.h", []byte("a\nb\n"))
	file := fs.Get(id)

	want := []uint32{1, 3}
	if len(file.LineIdx) != len(want) {
		t.Fatalf("LineIdx = %v, want %v", file.LineIdx, want)
	}
	for i := range want {
		if file.LineIdx[i] != want[i] {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], want[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.h", []byte("#define A 1\n#define B 2\n"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{"file start", 0, LineCol{1, 1}},
		{"inside first line", 8, LineCol{1, 9}},
		{"newline belongs to line", 11, LineCol{1, 12}},
		{"second line start", 12, LineCol{2, 1}},
		{"second line value", 22, LineCol{2, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.h", []byte("#define SDL_HAT_UP 0x01"))

	if got := fs.Text(Span{File: id, Start: 8, End: 18}); got != "SDL_HAT_UP" {
		t.Errorf("Text() = %q, want SDL_HAT_UP", got)
	}
	if got := fs.Text(Span{File: id, Start: 19, End: 400}); got != "0x01" {
		t.Errorf("clamped Text() = %q, want 0x01", got)
	}
	if got := fs.Text(Span{File: 9, Start: 0, End: 1}); got != "" {
		t.Errorf("unknown file Text() = %q, want empty", got)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.h", []byte("one\ntwo\nthree"))
	f := fs.Get(id)

	for n, want := range map[uint32]string{0: "", 1: "one", 2: "two", 3: "three", 4: ""} {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SDL_init.h")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("#define A 1\r\n#define B 2\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "#define A 1\n#define B 2\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.h")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
