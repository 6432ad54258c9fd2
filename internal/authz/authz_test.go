package authz

import (
	"testing"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
)

var (
	superAdmin = Actor{UserID: "u-super", Role: model.RoleSuperAdmin}
	adminA     = Actor{UserID: "u-admin-a", TenantID: "tenant-a", Role: model.RoleTenantAdmin}
	memberA    = Actor{UserID: "u-member-a", TenantID: "tenant-a", Role: model.RoleUser}
)

func TestSuperAdminAllowedEverywhere(t *testing.T) {
	actions := []Action{
		TenantCreate, TenantUpdate, TenantList, TenantRead,
		UserCreate, UserDelete, ProjectDelete, TaskUpdate, AuditList,
	}
	for _, action := range actions {
		d := Authorize(superAdmin, action, Target{TenantID: "tenant-b"})
		if !d.Allowed {
			t.Fatalf("super_admin denied %s: %s", action, d.Reason)
		}
	}
}

func TestTenantRecordIsSuperAdminOnly(t *testing.T) {
	for _, actor := range []Actor{adminA, memberA} {
		for _, action := range []Action{TenantCreate, TenantUpdate, TenantList} {
			d := Authorize(actor, action, Target{TenantID: actor.TenantID})
			if d.Allowed {
				t.Fatalf("%s allowed %s on tenant record", actor.Role, action)
			}
			if d.Reason != "super admin only" {
				t.Fatalf("unexpected reason %q", d.Reason)
			}
		}
	}
}

func TestCrossTenantDenied(t *testing.T) {
	actions := []Action{
		TenantRead, UserCreate, UserUpdate, UserDelete,
		ProjectRead, ProjectCreate, ProjectUpdate, ProjectDelete,
		TaskRead, TaskCreate, TaskUpdate, TaskDelete, AuditList,
	}
	for _, action := range actions {
		d := Authorize(adminA, action, Target{TenantID: "tenant-b"})
		if d.Allowed {
			t.Fatalf("tenant-a admin allowed %s against tenant-b", action)
		}
		if d.Reason != "cross-tenant access" {
			t.Fatalf("action %s: unexpected reason %q", action, d.Reason)
		}
	}
}

func TestAdminGatedActions(t *testing.T) {
	gated := []Action{UserCreate, UserList, UserUpdate, UserDelete, ProjectDelete, AuditList}
	for _, action := range gated {
		d := Authorize(memberA, action, Target{TenantID: "tenant-a"})
		if d.Allowed {
			t.Fatalf("plain user allowed %s", action)
		}
		if d.Reason != "tenant admin required" {
			t.Fatalf("action %s: unexpected reason %q", action, d.Reason)
		}
		d = Authorize(adminA, action, Target{TenantID: "tenant-a", UserID: "u-other"})
		if !d.Allowed {
			t.Fatalf("tenant admin denied %s: %s", action, d.Reason)
		}
	}
}

func TestMemberAllowedTenantScopedWork(t *testing.T) {
	actions := []Action{TenantRead, UserRead, ProjectCreate, ProjectRead, ProjectUpdate, TaskCreate, TaskUpdate, TaskDelete}
	for _, action := range actions {
		d := Authorize(memberA, action, Target{TenantID: "tenant-a"})
		if !d.Allowed {
			t.Fatalf("member denied %s: %s", action, d.Reason)
		}
	}
}

func TestSelfRoleChangeForbidden(t *testing.T) {
	d := Authorize(adminA, UserUpdate, Target{TenantID: "tenant-a", UserID: adminA.UserID, RoleChange: true})
	if d.Allowed {
		t.Fatal("tenant admin allowed to change own role")
	}
	if d.Reason != "cannot change own role" {
		t.Fatalf("unexpected reason %q", d.Reason)
	}

	// Updating own record without touching the role stays allowed.
	d = Authorize(adminA, UserUpdate, Target{TenantID: "tenant-a", UserID: adminA.UserID})
	if !d.Allowed {
		t.Fatalf("self update without role change denied: %s", d.Reason)
	}

	// A different admin in the same tenant may change the role.
	d = Authorize(adminA, UserUpdate, Target{TenantID: "tenant-a", UserID: "u-member-a", RoleChange: true})
	if !d.Allowed {
		t.Fatalf("role change on another user denied: %s", d.Reason)
	}

	// super_admin may change anyone's role, including their own.
	d = Authorize(superAdmin, UserUpdate, Target{TenantID: "tenant-a", UserID: superAdmin.UserID, RoleChange: true})
	if !d.Allowed {
		t.Fatalf("super_admin role change denied: %s", d.Reason)
	}
}

func TestActorWithoutTenantDenied(t *testing.T) {
	orphan := Actor{UserID: "u-orphan", Role: model.RoleUser}
	d := Authorize(orphan, ProjectRead, Target{TenantID: "tenant-a"})
	if d.Allowed {
		t.Fatal("actor without tenant allowed tenant-scoped read")
	}
}
