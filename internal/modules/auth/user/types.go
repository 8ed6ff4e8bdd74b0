package user

import (
	"errors"

	"github.com/tsystem/portal/internal/models"
)

type CreateUserDTO struct {
	Email     string      `json:"email"     binding:"required,email"`
	Name      string      `json:"name"      binding:"required"`
	Password  string      `json:"password"  binding:"required,min=6"`
	Role      models.Role `json:"role"      binding:"required"`
	CompanyID string      `json:"companyId" binding:"required"`
}

type UpdateAccessDTO struct {
	Role      *models.Role `json:"role"`
	CompanyID *string      `json:"companyId"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type userResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	CompanyID   string      `json:"companyId"`
	CompanyName string      `json:"companyName,omitempty"`
}

func toResponse(u *models.User) userResponse {
	res := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
	if u.Company != nil {
		res.CompanyName = u.Company.Name
	}
	return res
}

var (
	errUserNotFound      = errors.New("user not found")
	errCompanyNotFound   = errors.New("company not found")
	errEmailTaken        = errors.New("email already registered")
	errWrongPassword     = errors.New("wrong password")
	errPasswordSameAsOld = errors.New("new password equals old password")
	errNothingToUpdate   = errors.New("nothing to update")
)
