package entities

import "time"

// InstallEvent is one persisted install prompt lifecycle transition.
type InstallEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;index;not null" json:"session_id"`
	EventName string    `gorm:"size:50;not null" json:"event_name"`
	State     string    `gorm:"size:20;default:''" json:"state"`
	Choice    string    `gorm:"size:10;default:''" json:"choice"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for GORM.
func (InstallEvent) TableName() string {
	return "install_events"
}
