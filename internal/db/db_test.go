package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "brainpace-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}
	for _, table := range []any{&models.User{}, &models.BrainState{}, &models.Task{}, &models.SubscriptionQuota{}, &models.QuotaConsumption{}} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table for %T", table)
		}
	}
}

func TestBrainStateUniquePerDay(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "brainpace-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	user := models.User{ExternalID: "sub-1"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	now := time.Now().UTC()
	first := models.BrainState{UserID: user.ID, Day: now.Format(models.DayLayout), Energy: 5, Focus: 5, Mood: 5, CreatedAt: now}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create first: %v", errCreate)
	}
	second := models.BrainState{UserID: user.ID, Day: first.Day, Energy: 6, Focus: 6, Mood: 6, CreatedAt: now}
	errDup := conn.Create(&second).Error
	if !IsUniqueViolation(errDup) {
		t.Fatalf("expected unique violation, got %v", errDup)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatalf("expected nil to be false")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected pg 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected pg 23503 not to be a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("expected generic error to be false")
	}
}

func TestBuildSQLiteDSN(t *testing.T) {
	dsn := BuildSQLiteDSN("data/app.db")
	if !strings.HasPrefix(dsn, "file:data/app.db?") {
		t.Fatalf("unexpected dsn prefix: %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys(1)") {
		t.Fatalf("expected foreign keys pragma, got %q", dsn)
	}
	custom := "file:x.db?_pragma=foreign_keys(0)"
	if BuildSQLiteDSN(custom) != custom {
		t.Fatalf("expected custom pragmas to be kept")
	}
}
