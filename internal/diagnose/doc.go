// Package diagnose turns any error returned by the core into a user-facing
// Diagnostic: a category, a message naming the failed operation, and a
// remediation hint.
//
// Classify is total. It switches over services.FailureKind in a fixed priority
// order (connection, timeout, tls, http, credential), then guard refusals, then
// everything else as "unknown". Messages and remediation hints are in
// Chinese, matching the prompts sent to the endpoint.
package diagnose
