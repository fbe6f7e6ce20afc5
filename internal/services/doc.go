// Package services defines shared utilities consumed by the mixing pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request tokens, stage names, and stem indexes
//     for logging and correlation.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP statuses (400 for invalid input, 500 otherwise).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error classification, observability) stays uniform across components.
package services
