package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
)

// Manifest is the [generate] section of sdl3gen.toml with paths made
// absolute.
type Manifest struct {
	Path     string // manifest file, "" for defaults
	Source   string // header directory
	Output   string // generated package directory
	Package  string
	Revision string
	Baseline ast.Version
	Metadata bool
	Exclude  []string // glob patterns on header base names
	Jobs     int
}

// DefaultManifest is used when no sdl3gen.toml is found.
func DefaultManifest() Manifest {
	return Manifest{
		Source:   "include/SDL3",
		Output:   "sdl",
		Package:  "sdl",
		Baseline: ast.Version{Major: 3, Minor: 2, Patch: 0},
		Metadata: true,
	}
}

type manifestFile struct {
	Generate struct {
		Source   string   `toml:"source"`
		Output   string   `toml:"output"`
		Package  string   `toml:"package"`
		Revision string   `toml:"revision"`
		Baseline string   `toml:"baseline"`
		Metadata bool     `toml:"metadata"`
		Exclude  []string `toml:"exclude"`
		Jobs     int      `toml:"jobs"`
	} `toml:"generate"`
}

// LoadManifest parses path. Failures are diag.Diagnostic values with code
// ProjBadManifest.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, badManifest(path, "failed to parse TOML: %v", err)
	}
	if !meta.IsDefined("generate") {
		return Manifest{}, badManifest(path, "missing [generate]")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Manifest{}, badManifest(path, "unknown keys: %s", strings.Join(keys, ", "))
	}

	m := DefaultManifest()
	m.Path = path
	g := cfg.Generate
	if s := strings.TrimSpace(g.Source); s != "" {
		m.Source = s
	}
	if s := strings.TrimSpace(g.Output); s != "" {
		m.Output = s
	}
	if s := strings.TrimSpace(g.Package); s != "" {
		m.Package = s
	}
	m.Revision = strings.TrimSpace(g.Revision)
	if s := strings.TrimSpace(g.Baseline); s != "" {
		v, ok := ast.ParseVersion(s)
		if !ok {
			return Manifest{}, badManifest(path, "invalid baseline %q, want X.Y.Z", s)
		}
		m.Baseline = v
	}
	if meta.IsDefined("generate", "metadata") {
		m.Metadata = g.Metadata
	}
	m.Exclude = g.Exclude
	for _, pat := range m.Exclude {
		if _, err := filepath.Match(pat, ""); err != nil {
			return Manifest{}, badManifest(path, "invalid exclude pattern %q", pat)
		}
	}
	if g.Jobs < 0 {
		return Manifest{}, badManifest(path, "jobs must not be negative")
	}
	m.Jobs = g.Jobs

	root := filepath.Dir(path)
	m.Source = within(root, m.Source)
	m.Output = within(root, m.Output)
	return m, nil
}

// WithEnv overrides manifest values from SDL3GEN_SOURCE, SDL3GEN_OUTPUT,
// SDL3GEN_REVISION and SDL3GEN_JOBS. The environment is re-read on every
// call.
func (m Manifest) WithEnv() Manifest {
	env.Load()
	m.Source = env.Str("SDL3GEN_SOURCE", m.Source)
	m.Output = env.Str("SDL3GEN_OUTPUT", m.Output)
	m.Revision = env.Str("SDL3GEN_REVISION", m.Revision)
	if jobs := env.Int("SDL3GEN_JOBS", m.Jobs); jobs >= 0 {
		m.Jobs = jobs
	}
	return m
}

func within(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

func badManifest(path, format string, args ...any) error {
	return diag.NewError(diag.ProjBadManifest, source.Nowhere, path+": "+fmt.Sprintf(format, args...))
}
