package preflight

import (
	"context"
	"path/filepath"

	"kouri/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check against store and the record loaded
// from it. loadErr is the error returned by store.Load, if any.
func RunAll(ctx context.Context, store *config.Store, cfg config.Config, loadErr error) []Result {
	if store == nil {
		return nil
	}

	results := []Result{
		CheckConfigFile(store, cfg, loadErr),
		CheckDirectoryAccess("Config directory", filepath.Dir(store.Path())),
		CheckCredentials(cfg),
		CheckEndpoint(ctx, cfg.BaseURL),
	}

	// The auth check needs a key that can be sent.
	if results[2].Passed {
		results = append(results, CheckAuth(ctx, cfg.BaseURL, cfg.APIKey))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
