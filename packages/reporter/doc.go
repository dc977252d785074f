// Package reporter renders test-run lifecycle events into a human-readable
// terminal report.
//
// A Reporter subscribes to a run's event stream via StartRun, renders live
// progress as each event arrives, and produces the end-of-run summary in
// EndRun. Per-run aggregate state (failures, known failures, per-file stats)
// is owned exclusively by the Reporter and reset at the start of every run.
//
// Rendered lines go to the report stream, indented by a fixed margin. Raw
// worker stdout/stderr passes through to a separate side-channel stream so
// redirecting one preserves the other verbatim. All writes for one event are
// buffered and flushed atomically, so output from different events never
// interleaves even when the destination buffers asynchronously.
package reporter
