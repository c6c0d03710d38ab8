// Package database opens the throwaway in-memory databases the SQL window
// engines run against and stages visit records into them.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trafficlens/internal/traffic"
)

const stageBatchSize = 200

// Visit is the staging row the window queries read. Timestamps are stored as
// Unix microseconds so ordering is numeric in every backend and spans any
// year the parser accepts.
type Visit struct {
	ID             uint   `gorm:"primaryKey"`
	Seq            int    `gorm:"not null"`
	Ts             int64  `gorm:"not null;index:idx_visits_device_ts,priority:2"`
	DeviceCategory string `gorm:"not null;index:idx_visits_device_ts,priority:1"`
	Visitors       int    `gorm:"not null"`
}

func (Visit) TableName() string { return "visits" }

// NewVisit converts a typed record to its staging row.
func NewVisit(r traffic.VisitRecord) Visit {
	return Visit{
		Seq:            r.Seq,
		Ts:             r.Timestamp.UnixMicro(),
		DeviceCategory: r.DeviceCategory,
		Visitors:       r.Visitors,
	}
}

// OpenSQLite opens a private in-memory SQLite database. Each call gets its
// own database; it disappears once the returned handle is closed.
func OpenSQLite(log *slog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:trafficlens_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// A shared-cache memory database lives as long as one connection does.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&Visit{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate visits: %w", err)
	}

	log.Debug("Opened in-memory sqlite database")
	return db, nil
}

// CloseSQLite releases the connection behind db.
func CloseSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StageSQLite inserts visits into the visits table in batches.
func StageSQLite(ctx context.Context, db *gorm.DB, visits []traffic.VisitRecord) error {
	if len(visits) == 0 {
		return nil
	}
	rows := make([]Visit, len(visits))
	for i, v := range visits {
		rows[i] = NewVisit(v)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(rows, stageBatchSize).Error; err != nil {
			return fmt.Errorf("stage visits: %w", err)
		}
		return nil
	})
}

// OpenDuckDB opens an in-memory DuckDB database with the visits table created.
func OpenDuckDB(ctx context.Context, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
        CREATE TABLE visits (
            seq BIGINT NOT NULL,
            ts BIGINT NOT NULL,
            device_category VARCHAR NOT NULL,
            visitors BIGINT NOT NULL
        )
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create visits table: %w", err)
	}

	log.Debug("Opened in-memory duckdb database")
	return db, nil
}

// StageDuckDB inserts visits into the visits table inside one transaction.
func StageDuckDB(ctx context.Context, db *sql.DB, visits []traffic.VisitRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stage: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO visits (seq, ts, device_category, visitors)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare stage: %w", err)
	}
	defer stmt.Close()

	for _, v := range visits {
		row := NewVisit(v)
		if _, err := stmt.ExecContext(ctx, row.Seq, row.Ts, row.DeviceCategory, row.Visitors); err != nil {
			return fmt.Errorf("stage visit %d: %w", row.Seq, err)
		}
	}

	return tx.Commit()
}
