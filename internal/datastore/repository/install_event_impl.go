package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
)

// installEventRepository implements InstallEventRepository.
type installEventRepository struct {
	db *gorm.DB
}

// NewInstallEventRepository creates a new InstallEventRepository.
func NewInstallEventRepository(db *gorm.DB) InstallEventRepository {
	return &installEventRepository{db: db}
}

// Save persists an install event.
func (r *installEventRepository) Save(ctx context.Context, event *entities.InstallEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save install event: %w", err)
	}
	return nil
}

// ListBySession returns a session's install events, newest first.
func (r *installEventRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]entities.InstallEvent, error) {
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var events []entities.InstallEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list install events for session %s: %w", sessionID, err)
	}
	return events, nil
}

// DeleteBefore removes install events created before the cutoff.
func (r *installEventRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&entities.InstallEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old install events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
