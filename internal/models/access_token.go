package models

import "time"

// AccessToken is the server-side record of an issued session token. Deleting the row
// revokes the session even while the signed token is still within its own expiry.
type AccessToken struct {
	ID        uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	Token     string    `json:"-"         gorm:"type:varchar(512);uniqueIndex;not null"`
	UserID    string    `json:"userId"    gorm:"type:varchar(64);index;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"-"         gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (AccessToken) TableName() string { return "access_tokens" }
