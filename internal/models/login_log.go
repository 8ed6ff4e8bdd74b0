package models

import "time"

// LoginStatus is the outcome of a login attempt.
type LoginStatus string

const (
	LoginSuccess LoginStatus = "success"
	LoginFailed  LoginStatus = "failed"
)

// LoginLog is the append-only audit trail of login attempts.
type LoginLog struct {
	ID        uint        `json:"id"        gorm:"primaryKey;autoIncrement"`
	UserID    *string     `json:"userId"    gorm:"type:varchar(64);index"`
	Email     string      `json:"email"     gorm:"type:varchar(191);index;not null"`
	CompanyID string      `json:"companyId" gorm:"type:varchar(64);index;not null"`
	Timestamp time.Time   `json:"timestamp" gorm:"index;not null"`
	IP        string      `json:"ip"        gorm:"type:varchar(64)"`
	Country   string      `json:"country"   gorm:"type:varchar(64)"`
	City      string      `json:"city"      gorm:"type:varchar(128)"`
	Region    string      `json:"region"    gorm:"type:varchar(128)"`
	Status    LoginStatus `json:"status"    gorm:"type:varchar(16);index;not null"`
	Reason    *string     `json:"reason"    gorm:"type:text"`
}

func (LoginLog) TableName() string { return "login_logs" }
