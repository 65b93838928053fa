package capability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

// Suite runs an ordered battery of probes. Probes are mutually independent
// and share no mutable state, so they run concurrently; the report keeps
// the configured order regardless of completion order.
type Suite struct {
	probes []Probe
	log    logger.Logger
}

// NewSuite creates a Suite over the given probes.
func NewSuite(log logger.Logger, probes ...Probe) *Suite {
	return &Suite{probes: probes, log: log}
}

// Probes returns the configured probes in report order.
func (s *Suite) Probes() []Probe {
	return s.probes
}

// Run executes all probes and aggregates their results. Individual probe
// failures never abort siblings; a panicking probe is recorded as failed.
func (s *Suite) Run(ctx context.Context) *Report {
	startedAt := time.Now()
	results := make([]Result, len(s.probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, probe := range s.probes {
		i, probe := i, probe
		g.Go(func() error {
			results[i] = s.runOne(gctx, probe)
			return nil
		})
	}
	_ = g.Wait() // probes never return errors; failures live in results

	report := NewReport(results, startedAt)
	if s.log != nil {
		s.log.Info("capability probe suite completed",
			logger.Int("passed", report.Passed),
			logger.Int("total", report.Total),
			logger.String("verdict", report.Verdict),
			logger.Duration("elapsed", report.Elapsed.Std()))
	}
	return report
}

// runOne executes a single probe with panic containment.
func (s *Suite) runOne(ctx context.Context, probe Probe) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Name:   probe.Name(),
				Passed: false,
				Detail: fmt.Sprintf("probe panicked: %v", r),
			}
			if s.log != nil {
				s.log.Error("capability probe panicked",
					logger.String("probe", probe.Name()),
					logger.Any("panic", r))
			}
		}
	}()
	return probe.Run(ctx)
}
