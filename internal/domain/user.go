package domain

import "time"

// User represents a wallet owner. Each user has exactly one account.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin can run reconciliation and view any history
	RoleAdmin Role = "admin"

	// RoleUser can operate only on their own wallet
	RoleUser Role = "user"
)

var validRoles = map[Role]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanReconcile checks if the role can run ledger-wide reconciliation
func (r Role) CanReconcile() bool {
	return r == RoleAdmin
}
