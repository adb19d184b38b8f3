package model

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsAdmin reports the binary admin check used for catalog writes
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}
