package capability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// scratchRecord is the throwaway table used for the round-trip.
type scratchRecord struct {
	ID      uint   `gorm:"primaryKey"`
	Payload string `gorm:"size:64"`
}

func (scratchRecord) TableName() string { return "capability_scratch" }

// TransientStoreProbe opens a scratch sqlite database, migrates a
// throwaway table, writes and reads one row, then deletes the database
// file. Fails on open, migrate or round-trip error.
type TransientStoreProbe struct {
	// Dir is where scratch databases are created. Empty means the
	// system temp directory.
	Dir string
}

// Name implements Probe.
func (p *TransientStoreProbe) Name() string { return ProbeTransientStore }

// Run implements Probe.
func (p *TransientStoreProbe) Run(ctx context.Context) Result {
	dir := p.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "capability_probe_"+uuid.New().String()+".db")
	defer os.Remove(path)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("open failed: %v", err)}
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := db.WithContext(ctx).AutoMigrate(&scratchRecord{}); err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("migrate failed: %v", err)}
	}

	want := scratchRecord{Payload: scratchValue}
	if err := db.WithContext(ctx).Create(&want).Error; err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("write failed: %v", err)}
	}

	var got scratchRecord
	if err := db.WithContext(ctx).First(&got, want.ID).Error; err != nil {
		return Result{Name: p.Name(), Passed: false, Detail: fmt.Sprintf("read failed: %v", err)}
	}
	if got.Payload != want.Payload {
		return Result{Name: p.Name(), Passed: false, Detail: "round-trip payload mismatch"}
	}

	return Result{Name: p.Name(), Passed: true, Detail: "scratch database open/write/read/delete ok"}
}
