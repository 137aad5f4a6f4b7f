package domain

import (
	"time"
)

type User struct {
	ID                int64     `json:"id"`
	Role              string    `json:"role"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	PasswordHash      string    `json:"-"`
	RefreshToken      string    `json:"-"`
	IsProfileComplete bool      `json:"is_profile_complete"`
	IsDeleted         bool      `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Valid user roles
const (
	RoleConsumer     = "consumer"
	RoleLawyer       = "lawyer"
	RoleLawStudent   = "law_student"
	RoleIntermediary = "intermediary"
	RoleAdmin        = "admin"
)

var validRoles = map[string]bool{
	RoleConsumer:     true,
	RoleLawyer:       true,
	RoleLawStudent:   true,
	RoleIntermediary: true,
	RoleAdmin:        true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// IsPasswordless reports whether the account was provisioned without a
// password (OTP or OAuth signup).
func (u *User) IsPasswordless() bool {
	return u.PasswordHash == ""
}

type UserInfo struct {
	ID                int64  `json:"id"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Role              string `json:"role"`
	IsProfileComplete bool   `json:"is_profile_complete"`
}

// ToUserInfo converts User to UserInfo (without sensitive data)
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:                u.ID,
		Email:             u.Email,
		Phone:             u.Phone,
		Role:              u.Role,
		IsProfileComplete: u.IsProfileComplete,
	}
}
