package buildpipeline

import (
	"path/filepath"
	"strings"
	"time"

	"sdl3gen/internal/driver"
)

// progress fans pipeline and per-header events out to a sink.
type progress struct {
	sink  ProgressSink
	base  string
	files []string
}

func newProgress(sink ProgressSink, base string) *progress {
	return &progress{sink: sink, base: base}
}

// queue registers the headers of a run, in discovery order.
func (p *progress) queue(headers []driver.Header) {
	p.files = make([]string, len(headers))
	for i, h := range headers {
		p.files[i] = displayPath(h.Path, p.base)
	}
	if p.sink == nil {
		return
	}
	for _, file := range p.files {
		p.sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

// stage reports a whole-run transition.
func (p *progress) stage(stage Stage, status Status, err error, elapsed time.Duration) {
	if p.sink == nil {
		return
	}
	p.sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// onHeader adapts driver phase events to per-header parse events.
func (p *progress) onHeader(ev driver.PhaseEvent) {
	if p.sink == nil {
		return
	}
	status := StatusWorking
	if ev.Status == driver.PhaseEnd {
		status = StatusDone
		if ev.Err != nil {
			status = StatusError
		}
	}
	p.sink.OnEvent(Event{
		File:    displayPath(ev.Name, p.base),
		Stage:   StageParse,
		Status:  status,
		Err:     ev.Err,
		Elapsed: ev.Elapsed,
	})
}

// displayPath shortens path to a slash path under base when possible.
func displayPath(path, base string) string {
	path = filepath.Clean(path)
	if base != "" {
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
