package user

import (
	"context"
	"errors"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/pagination"
	sessionpkg "github.com/tsystem/portal/internal/pkg/session"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// FindByEmail returns the user with its company, or (nil, nil) when absent.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Company").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Company").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns a page of users, optionally narrowed to one company and role.
func (s *Service) List(ctx context.Context, q pagination.Query, companyID string, role models.Role) (*pagination.Page[models.User], error) {
	tx := s.db.Model(&models.User{})
	if companyID != "" {
		tx = tx.Where("company_id = ?", companyID)
	}
	if role != "" {
		tx = tx.Where("role = ?", role)
	}
	return pagination.Find[models.User](ctx, tx, q, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Company").Order("email ASC")
	})
}

func (s *Service) Create(ctx context.Context, dto *CreateUserDTO) (*models.User, error) {
	if !dto.Role.Valid() {
		return nil, models.ErrInvalidRole
	}
	company, err := s.company(ctx, dto.CompanyID)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Email:        strings.TrimSpace(dto.Email),
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: hash,
		Role:         dto.Role,
		CompanyID:    company.ID,
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, errEmailTaken
		}
		return nil, err
	}
	u.Company = company
	return &u, nil
}

// UpdateAccess changes role and/or company. The user's sessions are revoked because
// their tokens carry the old role and company.
func (s *Service) UpdateAccess(ctx context.Context, id string, dto *UpdateAccessDTO) (*models.User, error) {
	if dto.Role == nil && dto.CompanyID == nil {
		return nil, errNothingToUpdate
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errUserNotFound
	}

	updates := map[string]interface{}{}
	if dto.Role != nil {
		if !dto.Role.Valid() {
			return nil, models.ErrInvalidRole
		}
		updates["role"] = *dto.Role
		u.Role = *dto.Role
	}
	if dto.CompanyID != nil {
		company, err := s.company(ctx, *dto.CompanyID)
		if err != nil {
			return nil, err
		}
		updates["company_id"] = company.ID
		u.CompanyID = company.ID
		u.Company = company
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
			return err
		}
		_, err := sessionpkg.RevokeUser(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, oldPwd, newPwd string) error {
	var u models.User
	if err := s.db.WithContext(ctx).Select("id, password_hash").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		return err
	}
	if !CheckPassword(u.PasswordHash, oldPwd) {
		return errWrongPassword
	}
	if CheckPassword(u.PasswordHash, newPwd) {
		return errPasswordSameAsOld
	}
	hash, err := HashPassword(newPwd)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (s *Service) company(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := s.db.WithContext(ctx).First(&c, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// isDuplicateKey detects a unique-index violation that slipped past the pre-check.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
