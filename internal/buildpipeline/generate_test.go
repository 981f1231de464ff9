package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/driver"
	"sdl3gen/internal/emit"
)

const headerDir = "../driver/testdata/SDL3"

func request(t *testing.T, output string) *GenerateRequest {
	t.Helper()
	opts := emit.DefaultOptions()
	opts.Revision = "release-3.2.0"
	return &GenerateRequest{Source: headerDir, Output: output, Emit: opts, Jobs: 2}
}

// readTree maps slash paths under dir to file contents.
func readTree(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	tree := map[string][]byte{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		tree[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	return tree
}

func TestGenerateWritesPackage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sdl")
	res, err := Generate(context.Background(), request(t, out))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	tree := readTree(t, out)
	for _, want := range []string{"init.go", "power.go", "stdinc.go", "sdl.go", "metadata/metadata.go", "metadata/metadata.msgpack"} {
		if _, ok := tree[want]; !ok {
			t.Errorf("missing %s in output", want)
		}
	}
	if !bytes.Contains(tree["sdl.go"], []byte(`const Revision = "release-3.2.0"`)) {
		t.Errorf("sdl.go lacks the revision:\n%s", tree["sdl.go"])
	}
	if !bytes.Contains(tree["power.go"], []byte("GetPowerInfo")) {
		t.Errorf("power.go lacks GetPowerInfo:\n%s", tree["power.go"])
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Errorf("no timing for %s", stage)
		}
	}
	if len(res.Report.Phases) != len(Stages) {
		t.Errorf("report has %d phases, want %d", len(res.Report.Phases), len(Stages))
	}
	if got := res.Includes.Includes("power"); !slices.Equal(got, []string{"stdinc"}) {
		t.Errorf("power includes = %v", got)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	base := t.TempDir()
	first, second := filepath.Join(base, "a"), filepath.Join(base, "b")
	if _, err := Generate(context.Background(), request(t, first)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	req := request(t, second)
	req.Jobs = 1
	if _, err := Generate(context.Background(), req); err != nil {
		t.Fatalf("second run: %v", err)
	}
	a, b := readTree(t, first), readTree(t, second)
	if len(a) != len(b) {
		t.Fatalf("trees differ in size: %d vs %d", len(a), len(b))
	}
	for path, data := range a {
		if !bytes.Equal(data, b[path]) {
			t.Errorf("%s differs between runs", path)
		}
	}
}

func TestGenerateSkipsUpToDateOutput(t *testing.T) {
	cache, err := driver.OpenGenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenGenCacheAt: %v", err)
	}
	out := filepath.Join(t.TempDir(), "sdl")
	req := request(t, out)
	req.Cache = cache

	res, err := Generate(context.Background(), req)
	if err != nil || res.UpToDate {
		t.Fatalf("first run = %v, up to date %v", err, res.UpToDate)
	}

	sink := &RecordingSink{}
	req.Progress = sink
	res, err = Generate(context.Background(), req)
	if err != nil || !res.UpToDate || res.Output != nil {
		t.Fatalf("second run = %v, up to date %v", err, res.UpToDate)
	}
	skipped := 0
	for _, ev := range sink.Events() {
		if ev.Status == StatusSkipped {
			skipped++
		}
	}
	if skipped != 3 {
		t.Fatalf("skipped stages = %d, want 3", skipped)
	}

	req.Force = true
	req.Progress = nil
	res, err = Generate(context.Background(), req)
	if err != nil || res.UpToDate || res.Output == nil {
		t.Fatalf("forced run = %v, up to date %v", err, res.UpToDate)
	}
}

func TestGenerateFailureLeavesOutputAlone(t *testing.T) {
	src := filepath.Join(t.TempDir(), "SDL3")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	headers := map[string]string{
		"SDL_good.h":   "typedef Uint32 SDL_GoodID;\n",
		"SDL_broken.h": "typedef struct SDL_Broken {\n    int x;\n",
	}
	for name, body := range headers {
		if err := os.WriteFile(filepath.Join(src, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(t.TempDir(), "sdl")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(out, "keep.go")
	if err := os.WriteFile(marker, []byte("package sdl\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	sink := &RecordingSink{}
	req := request(t, out)
	req.Source = src
	req.Progress = sink
	res, err := Generate(context.Background(), req)

	var d diag.Diagnostic
	if !errors.As(err, &d) || !strings.HasPrefix(d.Code.ID(), "SYN") {
		t.Fatalf("err = %v, want a syntax diagnostic", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("the bag must carry the failure")
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("existing output was touched: %v", err)
	}

	var headerFailed, stageFailed bool
	for _, ev := range sink.Events() {
		if ev.Status != StatusError {
			continue
		}
		switch ev.File {
		case "SDL_broken.h":
			headerFailed = true
		case "":
			stageFailed = ev.Stage == StageParse
		}
	}
	if !headerFailed || !stageFailed {
		t.Fatalf("missing error events: header %v, stage %v", headerFailed, stageFailed)
	}
}

func TestGenerateProgressEvents(t *testing.T) {
	sink := &RecordingSink{}
	req := request(t, filepath.Join(t.TempDir(), "sdl"))
	req.Progress = sink
	req.DryRun = true
	res, err := Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Output == nil || res.Timings.Has(StageCommit) {
		t.Fatalf("a dry run emits but does not commit")
	}

	queued := map[string]bool{}
	done := map[string]bool{}
	var stages []Stage
	for _, ev := range sink.Events() {
		switch {
		case ev.File != "" && ev.Status == StatusQueued:
			queued[ev.File] = true
		case ev.File != "" && ev.Status == StatusDone:
			done[ev.File] = true
		case ev.File == "" && ev.Status == StatusDone:
			stages = append(stages, ev.Stage)
		}
	}
	for _, f := range []string{"SDL_init.h", "SDL_power.h", "SDL_stdinc.h"} {
		if !queued[f] || !done[f] {
			t.Errorf("%s: queued %v, done %v", f, queued[f], done[f])
		}
	}
	if !slices.Equal(stages, []Stage{StageDiscover, StageParse, StageModel, StageEmit}) {
		t.Errorf("finished stages = %v", stages)
	}
}
