package buildpipeline

import "time"

// Stage is a pipeline phase.
type Stage string

const (
	StageDiscover Stage = "discover"
	StageParse    Stage = "parse"
	StageModel    Stage = "model"
	StageEmit     Stage = "emit"
	StageCommit   Stage = "commit"
)

// Stages lists the phases in execution order.
var Stages = []Stage{StageDiscover, StageParse, StageModel, StageEmit, StageCommit}

// Status is the progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusSkipped marks a run whose output was already up to date.
	StatusSkipped Status = "skipped"
)

// Event reports progress for a header, or for the whole run when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Parse events arrive from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores the duration of stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether stage ran.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration of stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum adds the durations of stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
