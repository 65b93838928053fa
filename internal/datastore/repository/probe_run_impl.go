package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
)

// probeRunRepository implements ProbeRunRepository.
type probeRunRepository struct {
	db *gorm.DB
}

// NewProbeRunRepository creates a new ProbeRunRepository.
func NewProbeRunRepository(db *gorm.DB) ProbeRunRepository {
	return &probeRunRepository{db: db}
}

// Save persists a probe run.
func (r *probeRunRepository) Save(ctx context.Context, run *entities.ProbeRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save probe run: %w", err)
	}
	return nil
}

// Get returns a single probe run by ID.
// Returns ErrProbeRunNotFound if the run does not exist.
func (r *probeRunRepository) Get(ctx context.Context, id uint) (*entities.ProbeRun, error) {
	var run entities.ProbeRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProbeRunNotFound
		}
		return nil, fmt.Errorf("failed to get probe run %d: %w", id, err)
	}
	return &run, nil
}

// List returns probe runs matching the filter, newest first, along with
// the total count before pagination.
func (r *probeRunRepository) List(ctx context.Context, filter ProbeRunFilter) ([]entities.ProbeRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.ProbeRun{})
	if filter.Verdict != "" {
		query = query.Where("verdict = ?", filter.Verdict)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count probe runs: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var runs []entities.ProbeRun
	if err := query.Order("started_at DESC").Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list probe runs: %w", err)
	}
	return runs, total, nil
}

// DeleteBefore removes probe runs started before the cutoff.
func (r *probeRunRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("started_at < ?", before).Delete(&entities.ProbeRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old probe runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
