package database

import (
	"roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []any{
		&models.User{},
		&models.CleaningRequest{},
		&models.Notification{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates indexes GORM doesn't create automatically. The
// partial unique index enforces the one-open-request-per-student invariant
// at the storage layer, closing the read-then-write race on concurrent
// submissions from the same student.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cleaning_requests_one_open_per_student
			ON cleaning_requests(student_id)
			WHERE status IN ('pending', 'in-progress', 'completed') AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_cleaning_requests_student_status
			ON cleaning_requests(student_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_cleaning_requests_sweeper_status
			ON cleaning_requests(sweeper_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read
			ON notifications(recipient_id, read)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_type_created
			ON notifications(recipient_id, type, created_at DESC)`,
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			return log.Err("failed to create index", err, "index", index)
		}
	}

	log.Info("Database indexes created successfully")
	return nil
}
