package driver

import "time"

// PhaseStatus reports whether a unit of work started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a header or phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
