package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two authorization levels in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

// User is the stored account record. Only the fields needed for
// authentication and authorization live here.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the resolved identity of the current caller, derived from a
// validated token plus the backing user record. It is never persisted.
type Principal struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
