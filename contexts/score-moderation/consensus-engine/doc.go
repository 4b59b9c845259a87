// Package consensusengine implements the multi-party vote consensus inside
// the score-moderation context.
//
// The module owns the upload-request lifecycle (open, vote, resolve, mark
// uploaded), derives tallies against the live eligible-voter set, and emits
// resolution events through an outbox. Duplicate-vote and single-transition
// guarantees live in the store adapters; the application layer never emulates
// them with check-then-act reads.
package consensusengine
