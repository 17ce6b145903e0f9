package model

import (
	"time"
)

// User roles. Exactly one role per profile.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
)

// User represents a clinic staff profile.
type User struct {
	Base
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Password     string     `json:"password,omitempty" db:"-"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Specialty    string     `json:"specialty" db:"specialty"`
	Role         string     `json:"role" db:"role"`
	Signature    *string    `json:"signature,omitempty" db:"signature"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// HasSignature reports whether a signature blob is stored for the profile.
func (u *User) HasSignature() bool {
	return u.Signature != nil && *u.Signature != ""
}

// RegisterRequest represents registration parameters
type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Specialty string `json:"specialty"`
}

// UpdateProfileRequest represents self-service profile updates
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
}

// UpdateRoleRequest represents an admin role change
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin doctor"`
}

// UpdateSignatureRequest carries an opaque encoded signature image blob.
type UpdateSignatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

type UserFilters struct {
	Role       string
	SearchTerm string
}
