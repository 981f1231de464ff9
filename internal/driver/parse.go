package driver

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sdl3gen/internal/ast"
	"sdl3gen/internal/diag"
	"sdl3gen/internal/parser"
	"sdl3gen/internal/patch"
	"sdl3gen/internal/source"
	"sdl3gen/internal/trace"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	AST     *ast.File // nil when parsing failed
	Patched []string
	Bag     *diag.Bag
}

// Parse parses and patches a single header. A parse failure is reported in
// the bag, not returned.
func Parse(path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	bag := diag.NewBag(maxDiagnostics)
	res := &ParseResult{FileSet: fs, File: file, Bag: bag}

	f, err := parser.ParseFile(file, parser.ModuleName(path), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		addError(bag, err)
		return res, nil
	}
	res.AST = f
	res.Patched = patch.Rules.ApplyFile(f)
	return res, nil
}

// ParseOptions configures ParseHeaders.
type ParseOptions struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	// Observer sees a start and an end event per header. It is called from
	// worker goroutines.
	Observer PhaseObserver
	// Patches defaults to patch.Rules.
	Patches patch.Table
}

// HeaderResult is the outcome for one header.
type HeaderResult struct {
	Header  Header
	File    *source.File
	AST     *ast.File
	Patched []string
	Bag     *diag.Bag
	Err     error // load or parse failure
}

// ParseSet holds the results of ParseHeaders in discovery order.
type ParseSet struct {
	FileSet *source.FileSet
	Results []HeaderResult
}

// ParseHeaders loads every header into one FileSet, then parses and patches
// them on a bounded worker pool. A failing header does not stop the others;
// only context cancellation aborts the run.
func ParseHeaders(ctx context.Context, headers []Header, opts ParseOptions) (*ParseSet, error) {
	set := &ParseSet{
		FileSet: source.NewFileSet(),
		Results: make([]HeaderResult, len(headers)),
	}
	if len(headers) == 0 {
		return set, nil
	}
	patches := opts.Patches
	if patches == nil {
		patches = patch.Rules
	}

	// FileSet is not safe for concurrent writes, so loading stays serial.
	for i, h := range headers {
		res := &set.Results[i]
		res.Header = h
		res.Bag = diag.NewBag(opts.MaxDiagnostics)
		id, err := set.FileSet.Load(h.Path)
		if err != nil {
			res.Err = diag.NewError(diag.IOLoadFileError, source.Nowhere, "failed to load file: "+err.Error())
			addError(res.Bag, res.Err)
			continue
		}
		res.File = set.FileSet.Get(id)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(headers)))
	for i := range set.Results {
		res := &set.Results[i]
		if res.File == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeHeader, "header:"+res.Header.Module, parent)
			opts.Observer.emit(PhaseEvent{Name: res.Header.Path, Status: PhaseStart})
			start := time.Now()

			f, err := parser.ParseFile(res.File, res.Header.Module, parser.Options{
				Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag}),
				Library:  res.Header.Library,
			})
			if err != nil {
				res.Err = err
				addError(res.Bag, err)
			} else {
				res.AST = f
				res.Patched = patches.ApplyFile(f)
			}

			opts.Observer.emit(PhaseEvent{Name: res.Header.Path, Status: PhaseEnd, Elapsed: time.Since(start), Err: res.Err})
			span.End(statusDetail(res.Err))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return set, err
	}
	return set, nil
}

// Files returns the parsed headers in discovery order.
func (s *ParseSet) Files() []*ast.File {
	out := make([]*ast.File, 0, len(s.Results))
	for _, r := range s.Results {
		if r.AST != nil {
			out = append(out, r.AST)
		}
	}
	return out
}

// FirstError returns the failure of the first failing header.
func (s *ParseSet) FirstError() error {
	for _, r := range s.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Diagnostics merges the per-header bags in discovery order.
func (s *ParseSet) Diagnostics(limit int) *diag.Bag {
	out := diag.NewBag(limit)
	for _, r := range s.Results {
		if r.Bag != nil {
			out.Merge(r.Bag)
		}
	}
	return out
}

// addError records err in bag unless an identical diagnostic is there,
// which happens when the lexer already reported it.
func addError(bag *diag.Bag, err error) {
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		d = diag.NewError(diag.UnknownCode, source.Nowhere, err.Error())
	}
	for _, have := range bag.Items() {
		if have.Code == d.Code && have.Primary == d.Primary && have.Message == d.Message {
			return
		}
	}
	bag.Add(d)
}

func statusDetail(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
