package domain

import "time"

// Role defines the access level of an operator account.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// User is an operator account for the dashboard. Reporting listeners are
// not authenticated; accounts only gate the mutating endpoints.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials carries a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CanOperate reports whether the role may change device state.
func (r Role) CanOperate() bool {
	return r == RoleOperator || r == RoleAdmin
}
