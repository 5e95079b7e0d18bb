// Package trace provides durable storage for rewrite traces.
//
// Every lowering run gets a UUIDv7 run ID and records one row per
// applied rewrite, stamped with the driver's logical clock. Module
// fingerprints before and after the run make idempotence visible: a
// run whose before and after hashes match applied nothing.
//
// The store uses SQLite with WAL mode. The driver is single-threaded,
// so there is exactly one writer; concurrent readers (the trace CLI)
// are safe.
package trace
