// Package repository provides data access for the diagnostic records.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/entities"
)

// ErrProbeRunNotFound indicates the requested probe run does not exist.
var ErrProbeRunNotFound = errors.New("probe run not found")

// ProbeRunRepository handles probe run persistence.
type ProbeRunRepository interface {
	Save(ctx context.Context, run *entities.ProbeRun) error
	Get(ctx context.Context, id uint) (*entities.ProbeRun, error)
	List(ctx context.Context, filter ProbeRunFilter) ([]entities.ProbeRun, int64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ProbeRunFilter controls probe run listing queries.
type ProbeRunFilter struct {
	Verdict string
	Limit   int
	Offset  int
}

// InstallEventRepository handles install prompt event persistence.
type InstallEventRepository interface {
	Save(ctx context.Context, event *entities.InstallEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]entities.InstallEvent, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
