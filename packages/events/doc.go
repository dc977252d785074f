// Package events defines the lifecycle events emitted by a test-execution
// engine during a run, plus the run plan and aggregate stats snapshots that
// accompany them.
//
// Events form a tagged union: every Event carries a Type discriminator and
// whichever payload fields that type uses. Consumers dispatch on Type and
// must treat unknown types as no-ops so that newer engines can emit event
// kinds older reporters do not understand.
package events
