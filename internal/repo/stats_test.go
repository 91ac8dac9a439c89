package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-community-bot/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newCommandRepo(t *testing.T, db *gorm.DB) *CustomCommandRepository {
	t.Helper()
	r, err := NewCustomCommandRepository(db)
	if err != nil {
		t.Fatalf("NewCustomCommandRepository: %v", err)
	}
	return r
}

func TestStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, _, err := newCommandRepo(t, db).Stats(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error due to missing custom_command table")
	}
}

func TestStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Community{}, &domain.CustomCommand{})
	count, maxAt, err := newCommandRepo(t, db).Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Community{}, &domain.CustomCommand{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for community 1
	t3 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)   // other community

	rows := []domain.CustomCommand{
		{CommunityID: 1, Trigger: "a", Response: "x", CreatedAt: t1, UpdatedAt: t1},
		{CommunityID: 1, Trigger: "b", Response: "y", CreatedAt: t1, UpdatedAt: t2},
		{CommunityID: 2, Trigger: "a", Response: "z", CreatedAt: t3, UpdatedAt: t3},
	}
	for i := range rows {
		if err := db.Session(&gorm.Session{SkipHooks: true}).Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
		// Pin UpdatedAt; autoUpdateTime would overwrite it on create.
		db.Model(&domain.CustomCommand{}).Where("id = ?", rows[i].ID).UpdateColumn("updated_at", rows[i].UpdatedAt)
	}

	count, maxAt, err := newCommandRepo(t, db).Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count=2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxUpdatedAt=%v, got %v", t2, maxAt)
	}
}
