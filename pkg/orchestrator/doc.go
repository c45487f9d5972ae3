// Package orchestrator wires the schema → session → renderer → export
// pipeline, providing dependency injection friendly helpers for consumers that
// prefer a single entry point.
package orchestrator
