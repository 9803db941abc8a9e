// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Operator Roles

// UserRole represents the authorization level granted to a console operator.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can start language clone runs and edit devotions
	RoleEditor UserRole = "editor"

	// Read-only access to previews and run status
	RoleViewer UserRole = "viewer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
