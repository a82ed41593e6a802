// Package policy is the access control engine: given a caller's role and an
// operation it answers allow or deny, and it scopes strategy queries to what
// the caller may see. Every rule lives here; handlers never compare roles
// themselves.
package policy

import (
	"broker_platform/internal/domain" // Roles and patch types
	"errors"                          // Deny reasons

	"gorm.io/gorm" // Query scoping
)

// Operation identifies a guarded operation
type Operation string

// Guarded operations
const (
	OpCreateUser     Operation = "create_user"     // POST /users
	OpListUsers      Operation = "list_users"      // GET /users
	OpUpdateUser     Operation = "update_user"     // PUT /users/:id
	OpDeleteUser     Operation = "delete_user"     // DELETE /users/:id
	OpCreateStrategy Operation = "create_strategy" // POST /strategies
	OpListStrategies Operation = "list_strategies" // GET /strategies
)

// Deny reasons, surfaced verbatim to the caller
var (
	ErrOnlySuperAdminCreates = errors.New("only super admin can create users")
	ErrOnlySuperAdminDeletes = errors.New("only super admin can delete users")
	ErrNotAuthorizedToView   = errors.New("not authorized to view users")
	ErrNotAuthorizedToEdit   = errors.New("not authorized to edit users")
	ErrSuperAdminTarget      = errors.New("admins cannot edit super admins")
	ErrRoleChangeForbidden   = errors.New("admins cannot change user roles")
	ErrUnknownOperation      = errors.New("unknown operation")
)

// Authorize decides whether actor may perform op at all. Target-sensitive
// rules (the update guards) are layered on top by CheckUserUpdate.
func Authorize(actor domain.Role, op Operation) error {
	switch op {
	case OpCreateUser:
		// Rule 1: only super_admin creates users
		if actor != domain.RoleSuperAdmin {
			return ErrOnlySuperAdminCreates
		}
	case OpListUsers:
		// Rule 2: super_admin and admin list users
		if actor != domain.RoleSuperAdmin && actor != domain.RoleAdmin {
			return ErrNotAuthorizedToView
		}
	case OpDeleteUser:
		// Rule 3: only super_admin deletes users
		if actor != domain.RoleSuperAdmin {
			return ErrOnlySuperAdminDeletes
		}
	case OpUpdateUser:
		// Rule 4 (first stage): super_admin and admin may attempt an update
		if actor != domain.RoleSuperAdmin && actor != domain.RoleAdmin {
			return ErrNotAuthorizedToEdit
		}
	case OpCreateStrategy, OpListStrategies:
		// Rules 5 and 6: any authenticated user; visibility is handled by
		// ScopeStrategies and creation is always self-owned
	default:
		return ErrUnknownOperation // Fail closed on unknown operations
	}
	return nil // Allowed
}

// CheckUserUpdate applies the target-sensitive update guards, assuming
// Authorize(actor, OpUpdateUser) already passed:
//   - an admin may not touch a super_admin target at all;
//   - an admin may not change any target's role to a different value.
//
// super_admin is exempt from both.
func CheckUserUpdate(actor domain.Role, targetRole domain.Role, patch *domain.UserPatch) error {
	if actor != domain.RoleAdmin {
		return nil // Only admin actors are restricted further
	}
	// Admins cannot edit super admins, regardless of which fields change
	if targetRole == domain.RoleSuperAdmin {
		return ErrSuperAdminTarget
	}
	// Privilege escalation guard: a role key with a different value is denied;
	// an absent role key or a same-value role key passes
	if patch.Role != nil && *patch.Role != targetRole {
		return ErrRoleChangeForbidden
	}
	return nil // Update allowed
}

// ScopeStrategies narrows a strategy query to what actor may see: super_admin
// sees every strategy system-wide, everyone else only their own.
func ScopeStrategies(actor *domain.Profile, q *gorm.DB) *gorm.DB {
	if actor.Role == domain.RoleSuperAdmin {
		return q // Unrestricted
	}
	return q.Where("user_id = ?", actor.ID) // Owner-scoped
}
