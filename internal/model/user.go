package model

import "time"

// Role constants
const (
	RoleAdmin     = "admin"
	RoleClinician = "clinician"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleClinician
}

// User represents a system user. Users are immutable after signup and
// are never deleted.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Identity is the per-request caller identity extracted from the
// identity assertion header.
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool     { return i.Role == RoleAdmin }
func (i Identity) IsClinician() bool { return i.Role == RoleClinician }

// SignupRequest represents signup parameters
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin clinician"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
