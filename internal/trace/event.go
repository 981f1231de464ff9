package trace

import "time"

// Kind is the type of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopePhase
	ScopeHeader
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeHeader:
		return "header"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // e.g. "parse", "header:SDL_video.h"
	Detail   string
	Extra    map[string]string
}
