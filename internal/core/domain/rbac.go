package domain

import "fmt"

// Role labels the single authorization level held by an account.
type Role string

const (
	// RoleViewer is the least-privileged role and the only role granted on
	// self-service registration.
	RoleViewer Role = "viewer"
	// RoleAdmin may run destructive operations and manage other accounts'
	// roles. It is granted exclusively through the administrative elevation
	// path, never on signup.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role label against the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleViewer:
		return RoleViewer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
