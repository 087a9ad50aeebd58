package domain

import "time"

// Role enumerates the access levels a user account can hold.
type Role string

const (
	RoleUser    Role = "User"
	RoleSupport Role = "Support"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSupport
}

// User is the identity record for anyone who can hold a session,
// ticket requesters and support staff alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
