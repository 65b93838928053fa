package capability

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/conf"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

// memoryProbeRunRepo is an in-memory ProbeRunRepository for recorder tests.
type memoryProbeRunRepo struct {
	mu   sync.Mutex
	runs []*entities.ProbeRun
}

func (r *memoryProbeRunRepo) Save(_ context.Context, run *entities.ProbeRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	return nil
}

func (r *memoryProbeRunRepo) Get(_ context.Context, id uint) (*entities.ProbeRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, repository.ErrProbeRunNotFound
}

func (r *memoryProbeRunRepo) List(_ context.Context, _ repository.ProbeRunFilter) ([]entities.ProbeRun, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.ProbeRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out, int64(len(out)), nil
}

func (r *memoryProbeRunRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.runs[:0]
	var deleted int64
	for _, run := range r.runs {
		if run.StartedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	r.runs = kept
	return deleted, nil
}

func testLog() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

func TestRecorderPersist(t *testing.T) {
	t.Parallel()
	repo := &memoryProbeRunRepo{}
	recorder := NewRecorder(repo, testLog())

	report := &Report{
		Results: []Result{
			{Name: ProbeKeyValue, Passed: true, Detail: "ok"},
			{Name: ProbeManifest, Passed: false, Detail: "fetch returned 404"},
		},
		Passed:    1,
		Total:     2,
		Verdict:   VerdictFailing,
		StartedAt: time.Now(),
		Elapsed:   conf.Duration(42 * time.Millisecond),
	}

	run, err := recorder.Persist(context.Background(), report)
	require.NoError(t, err)
	require.NotZero(t, run.ID)
	assert.Equal(t, report.Verdict, run.Verdict)
	assert.Equal(t, int64(42), run.ElapsedMS)

	var results []Result
	require.NoError(t, json.Unmarshal([]byte(run.Results), &results))
	assert.Equal(t, report.Results, results)
}

func TestRecorderCleanupLifecycle(t *testing.T) {
	t.Parallel()
	recorder := NewRecorder(&memoryProbeRunRepo{}, testLog())

	recorder.StartCleanup(0) // disabled, nothing to stop
	recorder.StartCleanup(30)
	recorder.StartCleanup(30) // restart replaces the previous goroutine
	recorder.Stop()
	recorder.Stop() // idempotent
}
