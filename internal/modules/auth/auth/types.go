package auth

import "github.com/tsystem/portal/internal/models"

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	CompanyID   string      `json:"companyId"`
	CompanyName string      `json:"companyName"`
}

type LoginResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

func newUserView(u *models.User) UserView {
	v := UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
	if u.Company != nil {
		v.CompanyName = u.Company.Name
	}
	return v
}
