// Package authz is the single authorization decision point. Every
// operation consults Authorize with a snapshot of the actor and the
// target scope; the function is pure and never touches storage.
package authz

import "github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"

// Action names an operation being authorized.
type Action string

const (
	TenantCreate Action = "tenant.create"
	TenantRead   Action = "tenant.read"
	TenantUpdate Action = "tenant.update"
	TenantList   Action = "tenant.list"

	UserCreate Action = "user.create"
	UserRead   Action = "user.read"
	UserList   Action = "user.list"
	UserUpdate Action = "user.update"
	UserDelete Action = "user.delete"

	ProjectCreate Action = "project.create"
	ProjectRead   Action = "project.read"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"

	TaskCreate Action = "task.create"
	TaskRead   Action = "task.read"
	TaskUpdate Action = "task.update"
	TaskDelete Action = "task.delete"

	AuditList Action = "audit.list"
)

// Actor is the authenticated identity an operation runs as. TenantID is
// empty for super_admin accounts.
type Actor struct {
	UserID   string
	TenantID string
	Role     model.Role
}

// Target is the scope an action is aimed at. UserID and RoleChange only
// matter for user-targeted updates.
type Target struct {
	TenantID   string
	UserID     string
	RoleChange bool
}

// Decision is a tagged allow/deny result. Reason is set only on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize evaluates the role rules in order; the first match wins.
func Authorize(actor Actor, action Action, target Target) Decision {
	// super_admin is allowed every action regardless of tenant.
	if actor.Role == model.RoleSuperAdmin {
		return allow()
	}

	// The tenant record itself is managed by super admins only.
	switch action {
	case TenantCreate, TenantUpdate, TenantList:
		return deny("super admin only")
	}

	// Everything else is tenant-scoped: actor and target tenant must match.
	if actor.TenantID == "" || actor.TenantID != target.TenantID {
		return deny("cross-tenant access")
	}

	// Admin-gated operations within the tenant.
	switch action {
	case UserCreate, UserList, UserUpdate, UserDelete, ProjectDelete, AuditList:
		if actor.Role != model.RoleTenantAdmin {
			return deny("tenant admin required")
		}
	}

	// A tenant admin may not change their own role.
	if action == UserUpdate && target.RoleChange && actor.UserID == target.UserID {
		return deny("cannot change own role")
	}

	return allow()
}
