package capability

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

const (
	// cleanupTimeout is the context deadline for the periodic history deletion.
	cleanupTimeout = 5 * time.Second
	// cleanupInterval is how often the history cleanup goroutine runs.
	cleanupInterval = 1 * time.Hour
)

// Recorder persists probe reports and prunes old runs on a schedule.
type Recorder struct {
	repo repository.ProbeRunRepository
	log  logger.Logger

	mu          sync.Mutex
	cleanupStop chan struct{}
}

// NewRecorder creates a Recorder over the given repository.
func NewRecorder(repo repository.ProbeRunRepository, log logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Persist saves a completed report as a ProbeRun row.
func (r *Recorder) Persist(ctx context.Context, report *Report) (*entities.ProbeRun, error) {
	resultsJSON, err := json.Marshal(report.Results)
	if err != nil {
		r.log.Error("failed to marshal probe results", logger.Error(err))
		resultsJSON = []byte("[]")
	}

	run := &entities.ProbeRun{
		StartedAt: report.StartedAt,
		ElapsedMS: report.Elapsed.Std().Milliseconds(),
		Passed:    report.Passed,
		Total:     report.Total,
		Verdict:   report.Verdict,
		Results:   string(resultsJSON),
	}
	if err := r.repo.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// StartCleanup starts a background goroutine that periodically deletes
// probe runs older than retentionDays. A value of 0 disables cleanup.
func (r *Recorder) StartCleanup(retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	// Stop any existing cleanup goroutine before starting a new one.
	r.stopCleanup()
	r.mu.Lock()
	r.cleanupStop = make(chan struct{})
	stopCh := r.cleanupStop
	r.mu.Unlock()
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retentionDays)
				cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
				deleted, err := r.repo.DeleteBefore(cleanupCtx, cutoff)
				cancel()
				if err != nil {
					r.log.Error("probe run cleanup failed", logger.Error(err))
				} else if deleted > 0 {
					r.log.Info("probe run cleanup completed",
						logger.Int64("deleted", deleted),
						logger.Int("retention_days", retentionDays))
				}
			case <-stopCh:
				return
			}
		}
	}()
}

// stopCleanup signals the cleanup goroutine to exit. Uses r.mu to make
// the nil-check-then-close atomic, preventing double-close panics.
func (r *Recorder) stopCleanup() {
	r.mu.Lock()
	ch := r.cleanupStop
	r.cleanupStop = nil
	r.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// Stop shuts down the cleanup goroutine.
func (r *Recorder) Stop() {
	r.stopCleanup()
}
