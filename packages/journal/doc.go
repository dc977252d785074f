// Package journal reads test-run event journals: newline-delimited JSON
// files written by the test-execution engine, one event per line, preceded
// by a run-plan header line.
//
// Journals can be replayed after the fact or followed live while the engine
// is still appending to them.
package journal
