// Package rewrite implements the legality-driven rewrite driver.
//
// A Target declares which operation kinds may remain in the IR after a
// conversion; Patterns rewrite illegal operations into legal ones.
// ApplyPartial enumerates illegal operations in program order, applies
// the first matching pattern to each, and fails the conversion if any
// illegal operation survives, attaching a printed dump of the IR for
// diagnosis.
//
// Each pattern application is all-or-nothing: a pattern either fully
// replaces-and-erases its input operation or returns an error without
// mutating the graph. The driver never retries a failed pattern.
//
// The driver is single-threaded and deterministic: operations are
// visited in program order and every applied rewrite is stamped with a
// monotonic sequence number, so a trace of one run replays identically
// on the next.
package rewrite
