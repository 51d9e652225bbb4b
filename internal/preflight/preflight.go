package preflight

import (
	"context"

	"varologs/internal/config"
)

// Result reports the outcome of a single preflight check. Optional failures
// degrade a feature without blocking the server.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckDatabase(ctx, cfg.Paths.DatabasePath))
	results = append(results, CheckAIKey(cfg))

	if cfg.Covers.Enabled && cfg.Covers.TMDBAPIKey != "" {
		results = append(results, CheckTMDB(ctx, cfg.Covers.TMDBBaseURL, cfg.Covers.TMDBAPIKey))
	}
	if cfg.Paths.FrontendDir != "" {
		results = append(results, CheckFrontend(cfg))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
