package auth

import "strings"

// Role is an access level of the driver API.
type Role string

const (
	// RoleViewer may read run state.
	RoleViewer Role = "viewer"
	// RoleOperator may trigger recalculations.
	RoleOperator Role = "operator"
)

// NormalizeRole validates and canonicalizes a role string.
func NormalizeRole(role string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(role))) {
	case RoleViewer:
		return RoleViewer, true
	case RoleOperator:
		return RoleOperator, true
	default:
		return "", false
	}
}

// Allows reports whether holder satisfies required.
func (r Role) Allows(required Role) bool {
	if required == RoleViewer {
		return r == RoleViewer || r == RoleOperator
	}
	return r == required
}
