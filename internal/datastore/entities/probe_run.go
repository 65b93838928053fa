// Package entities defines the persisted diagnostic records.
package entities

import "time"

// ProbeRun is one persisted capability probe suite run.
// Results holds the per-probe outcomes as a JSON-encoded array.
type ProbeRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StartedAt time.Time `gorm:"index;not null" json:"started_at"`
	ElapsedMS int64     `gorm:"not null;default:0" json:"elapsed_ms"`
	Passed    int       `gorm:"not null" json:"passed"`
	Total     int       `gorm:"not null" json:"total"`
	Verdict   string    `gorm:"size:10;not null;index" json:"verdict"`
	Results   string    `gorm:"type:text" json:"results"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (ProbeRun) TableName() string {
	return "probe_runs"
}
