// Package config loads, saves, and validates the kouri configuration record.
//
// The record is a single flat JSON object (TOML is accepted when the file name
// ends in .toml) holding the endpoint base URL, bearer key, model name, image
// generation size and UI theme. Store.Load never fails hard: a missing file
// yields Default(), and a malformed file yields Default() together with an
// ErrMalformed error the caller should surface. Store.Save overwrites the whole
// record under an advisory file lock.
//
// Request-issuing code must call Config.Complete before touching the network.
package config
