package models

import (
	"time"
)

// UserSession stores the hash of an issued refresh token. Rows are
// deleted on rotation and signout so presence implies validity.
type UserSession struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64     `gorm:"column:user_id;not null;index"`
	RefreshTokenHash string    `gorm:"column:refresh_token_hash;not null;uniqueIndex"`
	UserAgent        *string   `gorm:"column:user_agent"`
	IPAddress        *string   `gorm:"column:ip_address"`
	ExpiresAt        time.Time `gorm:"column:expires_at;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
