// Package diag defines the diagnostic model shared by every generator stage.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable string form (codes.go).
//     Ranges: LEX 1xxx, SYN 2xxx, MOD 3xxx, EMT 4xxx, IO 5xxx, PRJ 6xxx.
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding points at. Findings without a
//     location use source.Nowhere.
//   - Notes – optional secondary spans ("group declared here").
//
// Diagnostic also implements error, so hard failures from the parser, the
// model builder and the emitter travel as ordinary Go errors and are unwrapped
// with errors.As by the pipeline.
//
// # Emitting diagnostics
//
// Stages report through a Reporter. BagReporter collects into a Bag;
// DedupReporter drops repeats; LockedReporter makes a reporter safe for the
// parallel parse workers. Rendering lives in internal/diagfmt.
package diag
