package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/modules/auth/user"
)

func TestUpsertDemoAccount(t *testing.T) {
	name := strings.NewReplacer("/", "_").Replace(t.Name())
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
	ctx := context.Background()

	res, err := Upsert(ctx, db, DemoAccount(), nil)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !res.CompanyCreated || !res.UserCreated {
		t.Errorf("first Upsert() = %+v, want both created", res)
	}

	var u models.User
	if err := db.Preload("Company").First(&u, "email = ?", DemoEmail).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.ID != DemoUserID || u.Role != models.RoleManager || u.Company.Name != DemoCompanyName {
		t.Errorf("user = %+v", u)
	}
	if !user.CheckPassword(u.PasswordHash, DemoPassword) {
		t.Error("demo password does not verify")
	}

	again := DemoAccount()
	again.Password = "rotated"
	again.Role = models.RoleAdmin
	res, err = Upsert(ctx, db, again, nil)
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if res.CompanyCreated || res.UserCreated {
		t.Errorf("second Upsert() = %+v, want nothing created", res)
	}
	var reloaded models.User
	db.First(&reloaded, "id = ?", DemoUserID)
	if !user.CheckPassword(reloaded.PasswordHash, "rotated") {
		t.Error("existing user's password was not refreshed")
	}
	if reloaded.Role != models.RoleManager {
		t.Errorf("role = %q, want unchanged", reloaded.Role)
	}

	var users int64
	db.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Errorf("users = %d, want 1", users)
	}
}

func TestUpsertSecondAccount(t *testing.T) {
	name := strings.NewReplacer("/", "_").Replace(t.Name())
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
	ctx := context.Background()

	if _, err := Upsert(ctx, db, DemoAccount(), nil); err != nil {
		t.Fatalf("Upsert(demo) error = %v", err)
	}

	other := DemoAccount().WithEmail("other@tsystem.online")
	if other.UserID != "" {
		t.Fatalf("WithEmail() kept user id %q", other.UserID)
	}
	res, err := Upsert(ctx, db, other, nil)
	if err != nil {
		t.Fatalf("Upsert(other) error = %v", err)
	}
	if res.CompanyCreated || !res.UserCreated {
		t.Errorf("Upsert(other) = %+v, want user created in existing company", res)
	}

	var u models.User
	if err := db.First(&u, "email = ?", "other@tsystem.online").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.ID == "" || u.ID == DemoUserID || u.CompanyID != DemoCompanyID {
		t.Errorf("user = %+v", u)
	}

	if same := DemoAccount().WithEmail(DemoEmail); same.UserID != DemoUserID {
		t.Errorf("WithEmail(DemoEmail).UserID = %q, want %q", same.UserID, DemoUserID)
	}
}
