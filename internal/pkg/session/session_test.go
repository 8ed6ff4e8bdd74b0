package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/models"
	jwtpkg "github.com/tsystem/portal/internal/pkg/jwt"
	"gorm.io/gorm"
)

func init() { jwtpkg.SetSecret("session-test-secret") }

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.AppConfig{
		Env:      "test",
		Database: config.DatabaseRuntimeConfig{Driver: config.DriverSQLite},
		DSN:      "file:" + name + "?mode=memory&cache=shared",
	}
	db, err := database.Connect(cfg, true)
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

func seedUser(t *testing.T, db *gorm.DB) jwtpkg.Identity {
	t.Helper()
	company := models.Company{Base: models.Base{ID: "c-1"}, Name: "Acme"}
	u := models.User{Base: models.Base{ID: "u-1"}, Email: "u@acme.test", Name: "U", PasswordHash: "x", Role: models.RoleDriver, CompanyID: "c-1"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return jwtpkg.Identity{UserID: u.ID, Email: u.Email, Role: u.Role, CompanyID: u.CompanyID}
}

func TestIssueMirrorsClaimExpiry(t *testing.T) {
	db := testDB(t)
	id := seedUser(t, db)
	ctx := context.Background()

	token, rec, err := Issue(ctx, db, id, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := jwtpkg.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Identity() != id {
		t.Errorf("claims = %+v, want %+v", claims.Identity(), id)
	}
	// exp has second precision; the record keeps the exact instant.
	if d := rec.ExpiresAt.Sub(claims.ExpiresAt.Time); d < 0 || d >= time.Second {
		t.Errorf("record expiry %v differs from claim expiry %v", rec.ExpiresAt, claims.ExpiresAt.Time)
	}
	if rec.UserID != id.UserID || rec.Token != token {
		t.Errorf("record = %+v", rec)
	}
}

func TestIsActiveAndRevoke(t *testing.T) {
	db := testDB(t)
	id := seedUser(t, db)
	ctx := context.Background()

	token, _, err := Issue(ctx, db, id, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	other, _, err := Issue(ctx, db, id, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if ok, err := IsActive(ctx, db, token); err != nil || !ok {
		t.Fatalf("IsActive() = %v, %v, want true", ok, err)
	}
	n, err := Revoke(ctx, db, token)
	if err != nil || n != 1 {
		t.Fatalf("Revoke() = %d, %v, want 1", n, err)
	}
	if ok, _ := IsActive(ctx, db, token); ok {
		t.Error("IsActive() after Revoke = true")
	}
	if ok, _ := IsActive(ctx, db, other); !ok {
		t.Error("Revoke() removed an unrelated session")
	}

	n, err = Revoke(ctx, db, token)
	if err != nil || n != 0 {
		t.Errorf("second Revoke() = %d, %v, want 0, nil", n, err)
	}
	if _, err := Revoke(ctx, db, "never-issued"); err != nil {
		t.Errorf("Revoke(unknown) error = %v", err)
	}
}

func TestIsActiveIgnoresExpiredRecord(t *testing.T) {
	db := testDB(t)
	id := seedUser(t, db)
	ctx := context.Background()

	token, rec, err := Issue(ctx, db, id, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := db.Model(rec).Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire record: %v", err)
	}
	if ok, _ := IsActive(ctx, db, token); ok {
		t.Error("IsActive() = true for an expired record")
	}

	n, err := PurgeExpired(ctx, db, time.Now())
	if err != nil || n != 1 {
		t.Errorf("PurgeExpired() = %d, %v, want 1", n, err)
	}
}

func TestRevokeUser(t *testing.T) {
	db := testDB(t)
	id := seedUser(t, db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, _, err := Issue(ctx, db, id, time.Hour); err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
	}
	n, err := RevokeUser(ctx, db, id.UserID)
	if err != nil || n != 3 {
		t.Errorf("RevokeUser() = %d, %v, want 3", n, err)
	}
}
