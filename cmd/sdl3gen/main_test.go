package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"sdl3gen/internal/ast"
)

const testHeaders = "../../internal/driver/testdata/SDL3"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	closeSession(rootCmd)
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	source, err := filepath.Abs(testHeaders)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "sdl")

	stdout, stderr, err := execute(t, "generate", "--ui", "off", "--source", source, "--output", out)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "wrote ") || !strings.Contains(stdout, "from 3 headers") {
		t.Fatalf("unexpected summary %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "sdl.go")); err != nil {
		t.Fatalf("aggregation file missing: %v", err)
	}

	stdout, stderr, err = execute(t, "generate", "--ui", "off", "--source", source, "--output", out)
	if err != nil {
		t.Fatalf("second generate: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "up to date") {
		t.Fatalf("second run not up to date: %q", stdout)
	}
}

func TestResolveManifestLayers(t *testing.T) {
	dir := t.TempDir()
	manifest := `[generate]
source = "headers"
output = "gen/sdl"
package = "sdl3"
baseline = "3.2.0"
exclude = ["SDL_hidapi.h"]
`
	if err := os.WriteFile(filepath.Join(dir, "sdl3gen.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "tools")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)
	t.Setenv("SDL3GEN_REVISION", "release-3.2.4")

	cmd := &cobra.Command{Use: "test"}
	addManifestFlags(cmd)
	if err := cmd.ParseFlags([]string{"--package", "sdl", "--baseline", "3.4.0", "--exclude", "SDL_vulkan.h"}); err != nil {
		t.Fatal(err)
	}
	m, err := resolveManifest(cmd)
	if err != nil {
		t.Fatalf("resolveManifest: %v", err)
	}

	if m.Source != filepath.Join(dir, "headers") || m.Output != filepath.Join(dir, "gen", "sdl") {
		t.Errorf("paths = %s, %s", m.Source, m.Output)
	}
	if m.Package != "sdl" {
		t.Errorf("flag did not override package: %s", m.Package)
	}
	if m.Revision != "release-3.2.4" {
		t.Errorf("env did not set revision: %q", m.Revision)
	}
	if m.Baseline != (ast.Version{Major: 3, Minor: 4, Patch: 0}) {
		t.Errorf("baseline = %v", m.Baseline)
	}
	if strings.Join(m.Exclude, ",") != "SDL_hidapi.h,SDL_vulkan.h" {
		t.Errorf("exclude = %v", m.Exclude)
	}
}

func TestResolveManifestRejectsBadBaseline(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := &cobra.Command{Use: "test"}
	addManifestFlags(cmd)
	if err := cmd.ParseFlags([]string{"--baseline", "three"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveManifest(cmd); err == nil || !strings.Contains(err.Error(), "invalid --baseline") {
		t.Fatalf("expected baseline error, got %v", err)
	}
}

func TestDepsCommand(t *testing.T) {
	source, err := filepath.Abs(testHeaders)
	if err != nil {
		t.Fatal(err)
	}
	stdout, stderr, err := execute(t, "deps", "--source", source)
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, stderr)
	}
	for _, want := range []string{"init", "power", "stdinc", "batch 0: init", "batch 2: stdinc"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in:\n%s", want, stdout)
		}
	}
}

func TestGenerateReportsShortDiagnosticsWhenPiped(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	source := t.TempDir()
	header := "typedef struct SDL_Foo { SDL_Nope *p; } SDL_Foo;\n"
	if err := os.WriteFile(filepath.Join(source, "SDL_bad.h"), []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "sdl")

	_, stderr, err := execute(t, "generate", "--ui", "off", "--source", source, "--output", out)
	if err == nil {
		t.Fatalf("generate succeeded on an unknown type")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output written despite the error: %v", statErr)
	}
	lines := strings.Split(strings.TrimRight(stderr, "\n"), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "error MOD3001 ") || !strings.Contains(lines[0], "SDL_bad.h:1:") {
		t.Fatalf("stderr = %q, want one short MOD3001 line", stderr)
	}
}

func TestDiagnosticsFormat(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		format string
		want   string
	}{
		{"auto", "short"},
		{"pretty", "pretty"},
		{"json", "json"},
		{"sarif", "sarif"},
	}
	for _, tt := range tests {
		if got := diagnosticsFormat(tt.format, &buf); got != tt.want {
			t.Errorf("diagnosticsFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{" ON ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
