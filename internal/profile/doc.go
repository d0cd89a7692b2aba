// Package profile holds the character profile being worked on and enforces its
// lifecycle.
//
// A Session starts Empty. Generate and Import move it to Generated, Polish
// moves Generated or Polished to Polished, and Export only reads. There is no
// transition back to Empty. Every refusal and every backend failure leaves the
// session exactly as it was.
//
// Sessions are explicit values owned by the caller; nothing in this package is
// process-wide. A Session is not safe for concurrent use.
package profile
