package models

// Company is a tenant. Users belong to exactly one company.
type Company struct {
	Base
	Name string `json:"name" gorm:"not null"`
}

func (Company) TableName() string { return "companies" }
