package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/modules/auth/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Demo account defaults.
const (
	DemoCompanyID   = "tsystem-demo"
	DemoCompanyName = "T SYSTEM"
	DemoUserID      = "demo-user"
	DemoEmail       = "demonstracao@tsystem.online"
	DemoPassword    = "demonstracao"
	DemoName        = "Demo User"
)

type Account struct {
	CompanyID   string
	CompanyName string
	UserID      string
	Email       string
	Password    string
	Name        string
	Role        models.Role
}

// DemoAccount returns the account created by the seed command.
func DemoAccount() Account {
	return Account{
		CompanyID:   DemoCompanyID,
		CompanyName: DemoCompanyName,
		UserID:      DemoUserID,
		Email:       DemoEmail,
		Password:    DemoPassword,
		Name:        DemoName,
		Role:        models.RoleManager,
	}
}

// WithEmail returns a copy of a for email. A different email drops the fixed user id
// so the new row gets a generated one.
func (a Account) WithEmail(email string) Account {
	if email != a.Email {
		a.Email = email
		a.UserID = ""
	}
	return a
}

// Result tells whether the user row was created or refreshed.
type Result struct {
	CompanyCreated bool
	UserCreated    bool
}

// Upsert makes sure the company and user of a exist. An existing user keeps its id,
// role and company; only its password hash is replaced.
func Upsert(ctx context.Context, db *gorm.DB, a Account, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("Seed")
	if !a.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	hash, err := user.HashPassword(a.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res := &Result{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		err := tx.First(&company, "id = ?", a.CompanyID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			company = models.Company{Base: models.Base{ID: a.CompanyID}, Name: a.CompanyName}
			if err := tx.Create(&company).Error; err != nil {
				return fmt.Errorf("create company: %w", err)
			}
			res.CompanyCreated = true
		case err != nil:
			return err
		}

		var existing models.User
		err = tx.Where("email = ?", a.Email).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			u := models.User{
				Base:         models.Base{ID: a.UserID},
				Email:        a.Email,
				Name:         a.Name,
				PasswordHash: hash,
				Role:         a.Role,
				CompanyID:    company.ID,
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			res.UserCreated = true
			return nil
		case err != nil:
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", existing.ID).Update("password_hash", hash).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("demo account ready",
		zap.String("email", a.Email),
		zap.Bool("company_created", res.CompanyCreated),
		zap.Bool("user_created", res.UserCreated),
	)
	return res, nil
}
