package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/parser"
	"sdl3gen/internal/source"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[generate]
source = "vendor/SDL/include/SDL3"
output = "/tmp/out"
package = "sdl3"
revision = "release-3.2.10"
baseline = "3.2.0"
metadata = false
exclude = ["SDL_hidapi.h", "SDL_vulkan*.h"]
jobs = 4
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	root := filepath.Dir(path)
	if m.Source != filepath.Join(root, "vendor", "SDL", "include", "SDL3") {
		t.Fatalf("Source = %q", m.Source)
	}
	if m.Output != "/tmp/out" {
		t.Fatalf("Output = %q", m.Output)
	}
	if m.Package != "sdl3" || m.Revision != "release-3.2.10" || m.Jobs != 4 {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.Metadata {
		t.Fatalf("metadata should be disabled")
	}
	if m.Baseline != (ast.Version{Major: 3, Minor: 2}) {
		t.Fatalf("Baseline = %v", m.Baseline)
	}
	if !slices.Equal(m.Exclude, []string{"SDL_hidapi.h", "SDL_vulkan*.h"}) {
		t.Fatalf("Exclude = %v", m.Exclude)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	path := writeManifest(t, "[generate]\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package != "sdl" || !m.Metadata || m.Baseline.String() != "3.2.0" {
		t.Fatalf("unexpected defaults %+v", m)
	}
	if m.Output != filepath.Join(filepath.Dir(path), "sdl") {
		t.Fatalf("Output = %q", m.Output)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[generate\n", "failed to parse TOML"},
		{"section", "[build]\n", "missing [generate]"},
		{"unknown key", "[generate]\nsources = \"x\"\n", "unknown keys: generate.sources"},
		{"baseline", "[generate]\nbaseline = \"3.2\"\n", "invalid baseline"},
		{"pattern", "[generate]\nexclude = [\"[\"]\n", "invalid exclude pattern"},
		{"jobs", "[generate]\njobs = -1\n", "jobs must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(writeManifest(t, tt.body))
			var d diag.Diagnostic
			if !errors.As(err, &d) || d.Code != diag.ProjBadManifest {
				t.Fatalf("expected ProjBadManifest, got %v", err)
			}
			if !strings.Contains(d.Message, tt.want) {
				t.Fatalf("message %q does not contain %q", d.Message, tt.want)
			}
		})
	}
}

func TestManifestWithEnv(t *testing.T) {
	t.Setenv("SDL3GEN_SOURCE", "/opt/sdl/include/SDL3")
	t.Setenv("SDL3GEN_REVISION", "abc123")
	t.Setenv("SDL3GEN_JOBS", "2")
	m := DefaultManifest().WithEnv()
	if m.Source != "/opt/sdl/include/SDL3" || m.Revision != "abc123" || m.Jobs != 2 {
		t.Fatalf("env not applied: %+v", m)
	}
	if m.Output != "sdl" {
		t.Fatalf("Output = %q, want default", m.Output)
	}
}

func TestManifestWithEnvSeesLaterChanges(t *testing.T) {
	t.Setenv("SDL3GEN_REVISION", "first")
	if got := DefaultManifest().WithEnv().Revision; got != "first" {
		t.Fatalf("Revision = %q, want first", got)
	}
	t.Setenv("SDL3GEN_REVISION", "second")
	t.Setenv("SDL3GEN_OUTPUT", "/tmp/sdl-out")
	m := DefaultManifest().WithEnv()
	if m.Revision != "second" || m.Output != "/tmp/sdl-out" {
		t.Fatalf("later env changes ignored: revision %q, output %q", m.Revision, m.Output)
	}
}

func TestFindManifest(t *testing.T) {
	path := writeManifest(t, "[generate]\n")
	nested := filepath.Join(filepath.Dir(path), "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := FindManifest(nested)
	if err != nil || !ok || got != path {
		t.Fatalf("FindManifest = %q, %v, %v", got, ok, err)
	}
	root, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || root != filepath.Dir(path) {
		t.Fatalf("FindProjectRoot = %q, %v, %v", root, ok, err)
	}
}

func TestHeaderMetaOf(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("SDL_video.h", []byte(`#include <SDL3/SDL_stdinc.h>
#include <SDL3/SDL_rect.h>
#include "SDL_video.h"
#include <stdarg.h>
#include <SDL3/SDL_begin_code.h>
`))
	file := fs.Get(id)
	f, err := parser.ParseFile(file, "video", parser.Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	meta := HeaderMetaOf(f, file)
	var mods []string
	for _, inc := range meta.Includes {
		mods = append(mods, inc.Module)
	}
	if !slices.Equal(mods, []string{"stdinc", "rect", "begin_code"}) {
		t.Fatalf("includes = %v", mods)
	}
	if meta.ContentHash != Digest(file.Hash) || meta.Span.File != id {
		t.Fatalf("unexpected header meta %+v", meta)
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a := Digest{1}
	b := Digest{2}
	if Combine(a, a, b) == Combine(a, b, a) {
		t.Fatalf("Combine ignored dependency order")
	}
	if Fingerprint([]string{"x"}, a) == Fingerprint([]string{"x"}, b) {
		t.Fatalf("Fingerprint ignored header digests")
	}
	if Fingerprint([]string{"ab", "c"}) == Fingerprint([]string{"a", "bc"}) {
		t.Fatalf("Fingerprint settings are ambiguous")
	}
}
