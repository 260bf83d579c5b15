package db

import (
	"fmt"

	"github.com/brainpace/brainpace/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.BrainState{},
		&models.Task{},
		&models.SubscriptionQuota{},
		&models.QuotaConsumption{},
		&models.AIUsage{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errTaskIdx := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_user_open ON tasks (user_id, is_completed, complexity_level)
	`).Error; errTaskIdx != nil {
		return fmt.Errorf("db: create task filter index: %w", errTaskIdx)
	}
	if errBrainIdx := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_brain_states_user_created ON brain_states (user_id, created_at)
	`).Error; errBrainIdx != nil {
		return fmt.Errorf("db: create brain state history index: %w", errBrainIdx)
	}
	return nil
}
