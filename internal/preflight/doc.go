// Package preflight provides readiness checks for the configuration file, its
// directory, and the configured endpoint.
//
// The CLI "kouri doctor" command runs RunAll and prints one line per check.
// Checks never send chat or image requests; the endpoint checks issue plain
// GETs. Checks that depend on an earlier failure are still reported so the
// user sees every problem at once.
package preflight
