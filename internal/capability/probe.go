package capability

import (
	"context"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/conf"
)

// Result is the outcome of a single capability probe.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Probe is one isolated capability check. Run attempts a minimal real
// operation against the target subsystem where a side-effect-reversible
// round-trip is possible, and must leave no residue on exit.
type Probe interface {
	Name() string
	Run(ctx context.Context) Result
}

// Report aggregates the results of a full suite run.
type Report struct {
	Results   []Result      `json:"results"`
	Passed    int           `json:"passed"`
	Total     int           `json:"total"`
	Verdict   string        `json:"verdict"`
	StartedAt time.Time     `json:"startedAt"`
	Elapsed   conf.Duration `json:"elapsed"`
}

// ComputeVerdict classifies a pass count against a total.
// Zero probes is failing.
func ComputeVerdict(passed, total int) string {
	if total == 0 {
		return VerdictFailing
	}
	ratio := float64(passed) / float64(total)
	switch {
	case ratio == 1.0:
		return VerdictFull
	case ratio >= partialThreshold:
		return VerdictPartial
	default:
		return VerdictFailing
	}
}

// NewReport builds a Report from ordered results.
func NewReport(results []Result, startedAt time.Time) *Report {
	passed := 0
	for i := range results {
		if results[i].Passed {
			passed++
		}
	}
	return &Report{
		Results:   results,
		Passed:    passed,
		Total:     len(results),
		Verdict:   ComputeVerdict(passed, len(results)),
		StartedAt: startedAt,
		Elapsed:   conf.Duration(time.Since(startedAt)),
	}
}
