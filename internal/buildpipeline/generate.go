// Package buildpipeline runs a complete generation: discover, parse and
// patch, build the model, emit and commit.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/driver"
	"sdl3gen/internal/emit"
	"sdl3gen/internal/model"
	"sdl3gen/internal/observ"
	"sdl3gen/internal/project"
	"sdl3gen/internal/source"
	"sdl3gen/internal/trace"
	"sdl3gen/internal/version"
)

// GenerateRequest configures one run.
type GenerateRequest struct {
	Source         string // header directory
	Output         string // package directory, replaced as a whole
	Exclude        []string
	Emit           emit.Options
	Jobs           int
	MaxDiagnostics int
	Progress       ProgressSink
	// Cache enables the up-to-date check; Force ignores it.
	Cache  *driver.GenCache
	Force  bool
	DryRun bool // stop before commit
}

// GenerateResult carries every intermediate product of a run.
type GenerateResult struct {
	Headers     []driver.Header
	Parse       *driver.ParseSet
	Includes    *driver.IncludeGraph
	Model       *model.Model
	Output      *emit.Output
	Fingerprint project.Digest
	UpToDate    bool
	Bag         *diag.Bag
	Timings     Timings
	Report      observ.Report
}

// Generate runs the pipeline. Every failure is also recorded in the
// result's bag; on error nothing has been written to req.Output.
func Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Source == "" || req.Output == "" {
		return nil, errors.New("generate: missing source or output directory")
	}
	res := &GenerateResult{Bag: diag.NewBag(req.MaxDiagnostics)}
	timer := observ.NewTimer()
	defer func() { res.Report = timer.Report() }()

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "generate", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, root)
	prog := newProgress(req.Progress, req.Source)

	r := &run{ctx: ctx, req: req, res: res, timer: timer, prog: prog, tracer: tracer, parent: root.ID()}
	err := r.execute()
	detail := statusDetail(err, res.UpToDate)
	if tracer.Level() >= trace.LevelDetail {
		detail += " " + timer.Summary()
	}
	root.End(detail)
	return res, err
}

type run struct {
	ctx    context.Context
	req    *GenerateRequest
	res    *GenerateResult
	timer  *observ.Timer
	prog   *progress
	tracer trace.Tracer
	parent uint64
}

// phase times fn as one pipeline stage with a trace span and progress
// events.
func (r *run) phase(stage Stage, fn func() (string, error)) error {
	span := trace.Begin(r.tracer, trace.ScopePhase, string(stage), r.parent)
	idx := r.timer.Begin(string(stage))
	r.prog.stage(stage, StatusWorking, nil, 0)
	start := time.Now()

	note, err := fn()

	elapsed := time.Since(start)
	r.timer.End(idx, note)
	r.res.Timings.Set(stage, elapsed)
	span.End(statusDetail(err, false))
	if err != nil {
		r.record(err)
		r.prog.stage(stage, StatusError, err, elapsed)
		return err
	}
	r.prog.stage(stage, StatusDone, nil, elapsed)
	return nil
}

func (r *run) record(err error) {
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		d = diag.NewError(diag.UnknownCode, source.Nowhere, err.Error())
	}
	for _, have := range r.res.Bag.Items() {
		if have.Code == d.Code && have.Primary == d.Primary && have.Message == d.Message {
			return
		}
	}
	r.res.Bag.Add(d)
}

func (r *run) execute() error {
	req, res := r.req, r.res

	err := r.phase(StageDiscover, func() (string, error) {
		headers, err := driver.Discover(req.Source, req.Exclude)
		res.Headers = headers
		return fmt.Sprintf("%d headers", len(headers)), err
	})
	if err != nil {
		return err
	}
	r.prog.queue(res.Headers)

	err = r.phase(StageParse, func() (string, error) {
		set, err := driver.ParseHeaders(r.ctx, res.Headers, driver.ParseOptions{
			Jobs:           req.Jobs,
			MaxDiagnostics: req.MaxDiagnostics,
			Observer:       r.prog.onHeader,
		})
		res.Parse = set
		if err != nil {
			return "", err
		}
		res.Includes = driver.BuildIncludeGraph(set)
		res.Bag.Merge(set.Diagnostics(req.MaxDiagnostics))
		if err := set.FirstError(); err != nil {
			return "", err
		}
		patched := 0
		for _, hr := range set.Results {
			patched += len(hr.Patched)
		}
		return fmt.Sprintf("%d patched", patched), nil
	})
	if err != nil {
		return err
	}

	res.Fingerprint = project.Fingerprint(r.settings(), res.Includes.Hashes()...)
	if req.Cache != nil && !req.Force && !req.DryRun {
		fresh, err := req.Cache.Fresh(res.Fingerprint, req.Output)
		if err != nil {
			r.record(diag.New(diag.SevWarning, diag.IOLoadFileError, source.Nowhere, "generation cache: "+err.Error()).
				WithNote(source.Nowhere, "continuing without the cache"))
		}
		if fresh {
			res.UpToDate = true
			for _, stage := range []Stage{StageModel, StageEmit, StageCommit} {
				r.prog.stage(stage, StatusSkipped, nil, 0)
			}
			return nil
		}
	}

	err = r.phase(StageModel, func() (string, error) {
		m, err := model.Build(r.res.Parse.Files())
		res.Model = m
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d modules", len(m.Modules)), nil
	})
	if err != nil {
		return err
	}

	err = r.phase(StageEmit, func() (string, error) {
		out, err := emit.Emit(res.Model, req.Emit)
		res.Output = out
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d files", len(out.Files)), nil
	})
	if err != nil || req.DryRun {
		return err
	}

	return r.phase(StageCommit, func() (string, error) {
		if err := res.Output.Commit(req.Output); err != nil {
			return "", err
		}
		if err := req.Cache.Put(driver.PayloadFor(res.Fingerprint, req.Output, res.Output)); err != nil {
			r.record(diag.New(diag.SevWarning, diag.IOWriteError, source.Nowhere, "generation cache: "+err.Error()))
		}
		return req.Output, nil
	})
}

// settings lists everything besides header content that shapes the output.
func (r *run) settings() []string {
	o := r.req.Emit
	return []string{
		"generator=" + version.Version,
		"package=" + o.Package,
		"baseline=" + o.Baseline.String(),
		"revision=" + o.Revision,
		"banner=" + o.Generator,
		fmt.Sprintf("metadata=%t", !o.NoMetadata),
		"exclude=" + strings.Join(r.req.Exclude, ","),
	}
}

func statusDetail(err error, upToDate bool) string {
	switch {
	case err != nil:
		return "error"
	case upToDate:
		return "up to date"
	}
	return "ok"
}
