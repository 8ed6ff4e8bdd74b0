package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/models"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(&config.AppConfig{
		Env:      "test",
		Database: config.DatabaseRuntimeConfig{Driver: config.DriverSQLite},
		DSN:      "file:" + name + "?mode=memory&cache=shared",
	}, true)
	if err != nil {
		t.Fatalf("database.Connect() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestRecordFillsDefaults(t *testing.T) {
	db := openDB(t)
	r := NewRecorder(db, nil, "fallback-co")

	r.Record(context.Background(), Entry{
		Email:  "ana@acme.test",
		Status: models.LoginFailed,
		Reason: "invalid credentials",
		Origin: Origin{IP: "198.51.100.4"},
	})

	var l models.LoginLog
	if err := db.First(&l).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if l.CompanyID != "fallback-co" || l.UserID != nil || l.IP != "198.51.100.4" || l.City != unknown {
		t.Errorf("log = %+v", l)
	}
	if l.Reason == nil || *l.Reason != "invalid credentials" {
		t.Errorf("reason = %v", l.Reason)
	}
}

func TestRecordSurvivesCancelledRequest(t *testing.T) {
	db := openDB(t)
	r := NewRecorder(db, nil, "fallback-co")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, Entry{Email: "ana@acme.test", CompanyID: "acme", Status: models.LoginSuccess})

	var n int64
	db.Model(&models.LoginLog{}).Count(&n)
	if n != 1 {
		t.Fatalf("login logs = %d, want 1", n)
	}
	if r.Failures() != 0 {
		t.Errorf("Failures() = %d, want 0", r.Failures())
	}
}

func TestRecordCountsDroppedWrites(t *testing.T) {
	db := openDB(t)
	r := NewRecorder(db, nil, "fallback-co")
	if err := db.Migrator().DropTable(&models.LoginLog{}); err != nil {
		t.Fatalf("drop login_logs: %v", err)
	}

	r.Record(context.Background(), Entry{Email: "a@b.c", Status: models.LoginFailed})
	r.Record(context.Background(), Entry{Email: "a@b.c", Status: models.LoginFailed})
	if got := r.Failures(); got != 2 {
		t.Errorf("Failures() = %d, want 2", got)
	}
}
