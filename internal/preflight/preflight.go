package preflight

import (
	"context"

	"democap/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Scope selects which environment a command needs.
type Scope struct {
	// LiveCapture requires an X display to grab.
	LiveCapture bool
	// Journey requires the learning site to answer.
	Journey bool
}

// RunAll executes the checks relevant to scope.
func RunAll(ctx context.Context, cfg *config.Config, scope Scope) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Recordings directory", cfg.Paths.RecordingsDir),
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if scope.LiveCapture {
		results = append(results, CheckDisplay(cfg.Encoder.Display))
	}
	if scope.Journey {
		results = append(results, CheckJourneyTarget(ctx, cfg.Journey.BaseURL))
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
