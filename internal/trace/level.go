package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelPhase        // driver and phase spans
	LevelDetail       // plus per-header spans
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|phase|detail)", s)
	}
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePhase
	case LevelDetail:
		return scope <= ScopeHeader
	}
	return false
}
