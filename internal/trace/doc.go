// Package trace records span events for the generator pipeline.
//
// Enable it from the command line:
//
//	sdl3gen generate --trace=- --trace-level=detail
//
// Tracers:
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: fans out to several tracers
//
// Scopes go from coarse to fine: ScopeDriver for the command, ScopePhase
// for pipeline phases (discover, parse, model, emit, commit) and
// ScopeHeader for work on a single header. LevelPhase emits the first two,
// LevelDetail all three.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "parse", 0)
//	defer span.End("")
package trace
