package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/models"
	jwtpkg "github.com/tsystem/portal/internal/pkg/jwt"
	"github.com/tsystem/portal/internal/pkg/pagination"
	sessionpkg "github.com/tsystem/portal/internal/pkg/session"
	"gorm.io/gorm"
)

func init() { jwtpkg.SetSecret("user-test-secret") }

func testService(t *testing.T) (*Service, *gorm.DB) {
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
	for _, c := range []models.Company{
		{Base: models.Base{ID: "acme"}, Name: "Acme"},
		{Base: models.Base{ID: "globex"}, Name: "Globex"},
	} {
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("create company: %v", err)
		}
	}
	return NewService(db), db
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("hash = %q, want bcrypt cost 10", hash)
	}
	if !CheckPassword(hash, "s3cret") || CheckPassword(hash, "S3cret") {
		t.Error("CheckPassword() mismatch")
	}
	if CheckPassword("not-a-hash", "s3cret") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestCreate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	dto := &CreateUserDTO{Email: "bo@acme.test", Name: "Bo", Password: "secret1", Role: models.RoleDriver, CompanyID: "acme"}

	u, err := svc.Create(ctx, dto)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" || u.Company == nil || u.Company.Name != "Acme" {
		t.Errorf("user = %+v", u)
	}
	if !CheckPassword(u.PasswordHash, "secret1") {
		t.Error("stored hash does not match")
	}

	if _, err := svc.Create(ctx, dto); !errors.Is(err, errEmailTaken) {
		t.Errorf("duplicate Create() error = %v, want errEmailTaken", err)
	}

	bad := *dto
	bad.Email, bad.CompanyID = "x@acme.test", "missing"
	if _, err := svc.Create(ctx, &bad); !errors.Is(err, errCompanyNotFound) {
		t.Errorf("Create() error = %v, want errCompanyNotFound", err)
	}
	bad.CompanyID, bad.Role = "acme", "owner"
	if _, err := svc.Create(ctx, &bad); !errors.Is(err, models.ErrInvalidRole) {
		t.Errorf("Create() error = %v, want ErrInvalidRole", err)
	}
}

func TestUpdateAccessRevokesSessions(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()
	u, err := svc.Create(ctx, &CreateUserDTO{Email: "cy@acme.test", Name: "Cy", Password: "secret1", Role: models.RoleManager, CompanyID: "acme"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	token, _, err := sessionpkg.Issue(ctx, db, jwtpkg.Identity{UserID: u.ID, Email: u.Email, Role: u.Role, CompanyID: u.CompanyID}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	role, company := models.RoleAdmin, "globex"
	updated, err := svc.UpdateAccess(ctx, u.ID, &UpdateAccessDTO{Role: &role, CompanyID: &company})
	if err != nil {
		t.Fatalf("UpdateAccess() error = %v", err)
	}
	if updated.Role != models.RoleAdmin || updated.CompanyID != "globex" || updated.Company.Name != "Globex" {
		t.Errorf("updated = %+v", updated)
	}
	if ok, _ := sessionpkg.IsActive(ctx, db, token); ok {
		t.Error("session carrying the old role is still active")
	}

	reloaded, _ := svc.GetByID(ctx, u.ID)
	if reloaded.Role != models.RoleAdmin {
		t.Errorf("stored role = %q", reloaded.Role)
	}

	if _, err := svc.UpdateAccess(ctx, "ghost", &UpdateAccessDTO{Role: &role}); !errors.Is(err, errUserNotFound) {
		t.Errorf("UpdateAccess(ghost) error = %v", err)
	}
	if _, err := svc.UpdateAccess(ctx, u.ID, &UpdateAccessDTO{}); !errors.Is(err, errNothingToUpdate) {
		t.Errorf("UpdateAccess(empty) error = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	u, err := svc.Create(ctx, &CreateUserDTO{Email: "di@acme.test", Name: "Di", Password: "old-pass", Role: models.RolePartner, CompanyID: "acme"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "nope", "new-pass"); !errors.Is(err, errWrongPassword) {
		t.Errorf("wrong old password error = %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old-pass", "old-pass"); !errors.Is(err, errPasswordSameAsOld) {
		t.Errorf("same password error = %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	got, _ := svc.FindByEmail(ctx, "di@acme.test")
	if !CheckPassword(got.PasswordHash, "new-pass") {
		t.Error("password was not changed")
	}
}

func TestList(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	for i, r := range []models.Role{models.RoleDriver, models.RoleDriver, models.RoleManager} {
		email := string(rune('a'+i)) + "@acme.test"
		if _, err := svc.Create(ctx, &CreateUserDTO{Email: email, Name: "N", Password: "secret1", Role: r, CompanyID: "acme"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := svc.List(ctx, pagination.Query{Page: 1, Size: 2}, "acme", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Pagination.Total != 3 || len(page.Data) != 2 || !page.Pagination.HasNextPage {
		t.Errorf("page = %+v", page.Pagination)
	}
	if page.Data[0].Email != "a@acme.test" {
		t.Errorf("first = %q, want ordered by email", page.Data[0].Email)
	}

	drivers, err := svc.List(ctx, pagination.Query{Page: 1, Size: 10}, "", models.RoleDriver)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if drivers.Pagination.Total != 2 {
		t.Errorf("drivers = %d, want 2", drivers.Pagination.Total)
	}
}
