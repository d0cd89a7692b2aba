// Package services defines shared utilities consumed by the API client, the
// profile session, and the CLI host.
//
// Key responsibilities:
//   - Context helpers that stamp operation labels and correlation identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that tag guard refusals
//     (validation, configuration) so callers can tell them apart from remote
//     failures.
//   - The Failure type and its closed FailureKind enum. Transport code converts
//     every network or HTTP failure into a Failure exactly once, so later
//     classification is a switch over Kind instead of type inspection.
package services
