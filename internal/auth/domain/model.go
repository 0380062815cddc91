// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents a platform account. Accounts start unverified and flip to
// verified exactly once, via a verification-token consumption.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FirstName    string       `gorm:"type:text;not null" json:"first_name"`
	LastName     string       `gorm:"type:text;not null" json:"last_name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	IsVerified   bool         `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	IsPremium    bool         `gorm:"column:is_premium;not null;default:false" json:"is_premium"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// RefreshToken is the single persisted refresh credential per user. Login
// overwrites the existing row instead of inserting a second one.
type RefreshToken struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Token     string       `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the database table name.
func (RefreshToken) TableName() string { return "user_refresh_tokens" }
