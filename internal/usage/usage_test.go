package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brainpace/brainpace/internal/db"
	"github.com/brainpace/brainpace/internal/models"
	"gorm.io/gorm"
)

func newTestRecorder(t *testing.T) (*GormRecorder, *gorm.DB) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "usage-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewGormRecorder(conn), conn
}

func createUser(t *testing.T, conn *gorm.DB, externalID string) uint64 {
	t.Helper()
	user := models.User{ExternalID: externalID}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func TestRecordSurvivesCancelledContext(t *testing.T) {
	recorder, conn := newTestRecorder(t)
	userID := createUser(t, conn, "cancelled")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder.Record(ctx, Entry{UserID: userID, Model: "m", PromptTokens: -3, Latency: 40 * time.Millisecond})

	var rows []models.AIUsage
	if err := conn.Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Outcome != OutcomeOK || rows[0].PromptTokens != 0 || rows[0].LatencyMs != 40 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}

func TestRecordIgnoresAnonymous(t *testing.T) {
	recorder, conn := newTestRecorder(t)
	recorder.Record(context.Background(), Entry{Model: "m"})
	var n int64
	conn.Model(&models.AIUsage{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestSummarizeWindowAndUser(t *testing.T) {
	recorder, conn := newTestRecorder(t)
	ctx := context.Background()
	first := createUser(t, conn, "first")
	second := createUser(t, conn, "second")
	recorder.Record(ctx, Entry{UserID: first, Model: "m", PromptTokens: 10, CompletionTokens: 5, Latency: 100 * time.Millisecond})
	recorder.Record(ctx, Entry{UserID: first, Model: "m", Outcome: "unavailable", Latency: 300 * time.Millisecond})
	recorder.Record(ctx, Entry{UserID: second, Model: "m", PromptTokens: 99})

	old := models.AIUsage{UserID: first, Model: "m", Outcome: OutcomeOK, PromptTokens: 1000, CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	if err := conn.Create(&old).Error; err != nil {
		t.Fatalf("create old row: %v", err)
	}

	summary, err := recorder.Summarize(ctx, first, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	want := Summary{Requests: 2, Failures: 1, PromptTokens: 10, CompletionTokens: 5, AvgLatencyMs: 200}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}

	empty, err := recorder.Summarize(ctx, second+100, time.Now().Add(-time.Hour))
	if err != nil || empty != (Summary{}) {
		t.Fatalf("expected empty summary, got %+v err=%v", empty, err)
	}
}
