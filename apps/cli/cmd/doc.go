// Package cmd implements the verdict CLI commands using Cobra.
//
// Available commands:
//   - render: Replay or follow a test-run journal and print a report
//   - version: Show verdict version information
//
// The render command supports TAP output, journal schema validation,
// run-history seeding and a duration percentile breakdown.
package cmd
