package domain

import "time"

// Role separates agents from supervisors.
type Role string

const (
	RoleAgent      Role = "agent"
	RoleSupervisor Role = "supervisor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleSupervisor
}

// User is an authenticated operator of the dashboard.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSupervisor reports whether the user holds the supervisor role.
func (u *User) IsSupervisor() bool {
	return u != nil && u.Role == RoleSupervisor
}

// IsAgent reports whether the user holds the agent role.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == RoleAgent
}
