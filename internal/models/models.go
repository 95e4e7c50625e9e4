package models

import (
	"time"
)

// Strategy is the identity-provisioning method of an account. Exactly one
// strategy per account; federated accounts carry no password hash.
type Strategy string

const (
	StrategyDefault  Strategy = "default"
	StrategyGoogle   Strategy = "google"
	StrategyFacebook Strategy = "facebook"
)

// RequiredAction is the pending mandatory step gating full account use.
type RequiredAction string

const (
	ActionNone              RequiredAction = "none"
	ActionEmailVerification RequiredAction = "emailVerification"
	ActionResetPassword     RequiredAction = "resetPassword"
)

type User struct {
	ID             string         `gorm:"primaryKey;size:36"        json:"id"`
	Email          string         `gorm:"uniqueIndex;not null"      json:"email"`
	Username       string         `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash   string         `gorm:"column:password_hash"      json:"-"`
	Strategy       Strategy       `gorm:"not null;default:default"  json:"-"`
	IsVerified     bool           `gorm:"default:false"             json:"is_verified"`
	IsActive       bool           `gorm:"default:false"             json:"is_active"`
	IsLogin        bool           `gorm:"default:false"             json:"is_login"`
	JwtVersion     string         `gorm:"size:36"                   json:"-"`
	RequiredAction RequiredAction `gorm:"not null"                  json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
}

// PublicUser is the sanitized account payload returned to clients. Password
// hash, jwt version, strategy and required action never leave the server.
type PublicUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsVerified bool   `json:"is_verified"`
	IsActive   bool   `json:"is_active"`
	IsLogin    bool   `json:"is_login"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		IsLogin:    u.IsLogin,
	}
}

// VerificationCode is a one-time proof of email ownership. A code is
// redeemable exactly once: redemption flips IsComplete under an atomic
// check of owner, code equality and incompleteness.
type VerificationCode struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code       string `gorm:"size:6;not null"          json:"-"`
	OwnerID    string `gorm:"index;size:36;not null"   json:"owner_id"`
	IsComplete bool   `gorm:"default:false"            json:"is_complete"`
}
