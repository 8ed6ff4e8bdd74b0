package models

// User is a company account able to log in.
type User struct {
	Base
	Email        string   `json:"email"     gorm:"type:varchar(191);uniqueIndex;not null"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"         gorm:"not null"`
	Role         Role     `json:"role"      gorm:"type:varchar(32);index;not null"`
	CompanyID    string   `json:"companyId" gorm:"type:varchar(64);index;not null"`
	Company      *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

func (User) TableName() string { return "users" }
