// Package policy holds the authorization rules for the user administration
// surface. Every function is pure: decisions depend only on the roles and ids
// passed in, never on stored state.
package policy

import "github.com/99minutos/user-admin/internal/core/domain"

var assignable = map[domain.Role][]domain.Role{
	domain.RoleSuperAdmin: {domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin},
	domain.RoleAdmin:      {domain.RoleUser, domain.RoleAdmin},
}

// CanView reports whether actor may see the user listing at all.
func CanView(actor domain.Role) bool {
	return actor == domain.RoleAdmin || actor == domain.RoleSuperAdmin
}

// AssignableRoles returns the roles actor may give to a record. The result is
// a fresh slice; user gets an empty one.
func AssignableRoles(actor domain.Role) []domain.Role {
	roles := assignable[actor]
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out
}

// CanAssign reports whether role is in AssignableRoles(actor).
func CanAssign(actor, role domain.Role) bool {
	for _, r := range assignable[actor] {
		if r == role {
			return true
		}
	}
	return false
}

// ManageableRoles returns the current roles a target may hold for actor to
// change it. It is the guard set passed to the store on role and profile
// updates, and mirrors CanChangeRole.
func ManageableRoles(actor domain.Role) []domain.Role {
	switch actor {
	case domain.RoleSuperAdmin:
		return []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin}
	case domain.RoleAdmin:
		return []domain.Role{domain.RoleUser, domain.RoleAdmin}
	default:
		return nil
	}
}

// CanChangeRole reports whether actor may change the role of a target whose
// current role is target. Admins may manage users and other admins, never a
// superadmin.
func CanChangeRole(actor, target domain.Role) bool {
	for _, r := range ManageableRoles(actor) {
		if r == target {
			return true
		}
	}
	return false
}

// CanUpdateProfile applies the role-change rule to profile edits.
func CanUpdateProfile(actor, target domain.Role) bool {
	return CanChangeRole(actor, target)
}

// CanChangePassword reports whether actor may reset the password of the
// target record. Any admin or superadmin may reset any password, so the ids
// do not affect the decision; self-service reset is not offered.
func CanChangePassword(actor domain.Role, _, _ string) bool {
	return actor == domain.RoleAdmin || actor == domain.RoleSuperAdmin
}
