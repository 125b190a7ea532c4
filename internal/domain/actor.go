package domain

// Role is the workflow-level role carried by every authenticated caller.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw claim value onto a known role. Unknown values collapse
// to the base employee role so a malformed token never grants privileges.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleManager, RoleHR, RoleAdmin:
		return Role(s)
	default:
		return RoleEmployee
	}
}

// Actor identifies the employee performing an operation. Services receive it
// explicitly on every mutating call; it is never read from ambient state.
type Actor struct {
	EmployeeID string
	Role       Role
}
