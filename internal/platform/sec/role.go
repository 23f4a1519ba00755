// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "slices"

// UserRole is the authorization level carried by a token.
type UserRole string

const (
	// RoleViewer reads the catalog, the same as an anonymous caller.
	RoleViewer UserRole = "viewer"

	// RoleAdmin also creates, edits and deletes movies and flushes the store.
	RoleAdmin UserRole = "admin"
)

// roleOrder lists roles from least to most privileged.
var roleOrder = []UserRole{RoleViewer, RoleAdmin}

// ParseRole maps a claim value to a known role. Unknown values report false.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(raw)
	return role, slices.Contains(roleOrder, role)
}

// AtLeast reports whether r grants everything target grants.
// Unknown roles grant nothing.
func (r UserRole) AtLeast(target UserRole) bool {
	have := slices.Index(roleOrder, r)
	return have >= 0 && have >= slices.Index(roleOrder, target)
}
