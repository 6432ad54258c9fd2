package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	user, err := svc.Create(context.Background(), actorFor(env.adminA), env.tenantA.ID, CreateUserRequest{
		Email:    "new@acme.test",
		FullName: "New User",
		Password: "password123",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %s, want user (default)", user.Role)
	}
	if !user.IsActive {
		t.Error("new user is not active")
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionCreateUser); n != 1 {
		t.Errorf("CREATE_USER audit rows = %d, want 1", n)
	}
}

func TestCreateUserByMemberForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	_, err := svc.Create(context.Background(), actorFor(env.memberA), env.tenantA.ID, CreateUserRequest{
		Email:    "new@acme.test",
		FullName: "New User",
		Password: "password123",
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionCreateUser); n != 0 {
		t.Errorf("denied create left %d audit rows, want 0", n)
	}
}

func TestCreateUserCrossTenantForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	// Tenant A's admin cannot add users to tenant B.
	_, err := svc.Create(context.Background(), actorFor(env.adminA), env.tenantB.ID, CreateUserRequest{
		Email:    "mole@globex.test",
		FullName: "Mole",
		Password: "password123",
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	_, err := svc.Create(context.Background(), actorFor(env.adminA), env.tenantA.ID, CreateUserRequest{
		Email:    "member@acme.test",
		FullName: "Duplicate",
		Password: "password123",
	}, "")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict error", err)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	_, err := svc.Create(context.Background(), actorFor(env.adminA), env.tenantA.ID, CreateUserRequest{
		Email:    "new@acme.test",
		FullName: "New User",
		Password: "password123",
		Role:     "owner",
	}, "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateUserQuota(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)
	actor := actorFor(env.adminA)

	// Free plan allows 5 users; two are seeded.
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), actor, env.tenantA.ID, CreateUserRequest{
			Email:    fmt.Sprintf("user%d@acme.test", i),
			FullName: "Filler",
			Password: "password123",
		}, "")
		if err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
	}

	_, err := svc.Create(context.Background(), actor, env.tenantA.ID, CreateUserRequest{
		Email:    "overflow@acme.test",
		FullName: "Overflow",
		Password: "password123",
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden quota error", err)
	}

	// The denied attempt must leave no trace: no user and no audit row.
	n, countErr := env.store.CountUsers(context.Background(), env.tenantA.ID)
	if countErr != nil {
		t.Fatalf("count users: %v", countErr)
	}
	if n != 5 {
		t.Errorf("user count = %d, want 5", n)
	}
	if got := countAudit(t, env.store, env.tenantA.ID, audit.ActionCreateUser); got != 3 {
		t.Errorf("CREATE_USER audit rows = %d, want 3", got)
	}
}

func TestCreateUserQuotaConcurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)
	actor := actorFor(env.adminA)

	// 10 concurrent creates against 3 remaining seats must admit exactly 3.
	var wg sync.WaitGroup
	var created atomic.Int64
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), actor, env.tenantA.ID, CreateUserRequest{
				Email:    fmt.Sprintf("race%d@acme.test", i),
				FullName: "Racer",
				Password: "password123",
			}, "")
			if err == nil {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 3 {
		t.Errorf("concurrent creates admitted = %d, want 3", created.Load())
	}
	n, err := env.store.CountUsers(context.Background(), env.tenantA.ID)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 5 {
		t.Errorf("user count = %d, want exactly the plan limit 5", n)
	}
}

func TestUpdateUserSelfRoleForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	role := string(model.RoleUser)
	_, err := svc.Update(context.Background(), actorFor(env.adminA), env.adminA.ID, UpdateUserRequest{
		Role: &role,
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestUpdateUserDemoteLastAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	// Super admin may change roles, but not demote the only active admin.
	role := string(model.RoleUser)
	_, err := svc.Update(context.Background(), superActor(), env.adminA.ID, UpdateUserRequest{
		Role: &role,
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}

	kept, getErr := env.store.UserByID(context.Background(), env.adminA.ID)
	if getErr != nil {
		t.Fatalf("reload admin: %v", getErr)
	}
	if kept.Role != model.RoleTenantAdmin {
		t.Errorf("admin role changed to %s despite denial", kept.Role)
	}
}

func TestUpdateUserDeactivateLastAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	inactive := false
	_, err := svc.Update(context.Background(), superActor(), env.adminA.ID, UpdateUserRequest{
		IsActive: &inactive,
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestUpdateUserDemoteWithSecondAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)
	seedUser(t, env.store, env.tenantA.ID, "admin2@acme.test", model.RoleTenantAdmin)

	role := string(model.RoleUser)
	user, err := svc.Update(context.Background(), superActor(), env.adminA.ID, UpdateUserRequest{
		Role: &role,
	}, "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %s, want user", user.Role)
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionUpdateUser); n != 1 {
		t.Errorf("UPDATE_USER audit rows = %d, want 1", n)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	if err := svc.Delete(context.Background(), actorFor(env.adminA), env.memberA.ID, ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.store.UserByID(context.Background(), env.memberA.ID); err == nil {
		t.Error("deleted user still present")
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionDeleteUser); n != 1 {
		t.Errorf("DELETE_USER audit rows = %d, want 1", n)
	}
}

func TestDeleteLastAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	err := svc.Delete(context.Background(), superActor(), env.adminA.ID, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
	if _, getErr := env.store.UserByID(context.Background(), env.adminA.ID); getErr != nil {
		t.Error("last admin was deleted despite denial")
	}
}

func TestDeleteUserCrossTenantForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	err := svc.Delete(context.Background(), actorFor(env.adminB), env.memberA.ID, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestListUsersMemberForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	_, _, err := svc.List(context.Background(), actorFor(env.memberA), env.tenantA.ID, ListUsersRequest{})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestDirectory(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	users, total, err := svc.Directory(context.Background(), actorFor(env.memberA), 0, 0)
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("directory size = %d, want 2", len(users))
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, u := range users {
		if !u.InTenant(env.tenantA.ID) {
			t.Errorf("directory leaked user %s from another tenant", u.Email)
		}
	}
}

func TestDirectoryPagination(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.store)

	for i := 0; i < 5; i++ {
		seedUser(t, env.store, env.tenantA.ID, fmt.Sprintf("extra%d@acme.test", i), model.RoleUser)
	}

	// 7 members total: admin, member, and the 5 seeded above.
	users, total, err := svc.Directory(context.Background(), actorFor(env.memberA), 1, 3)
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("page size = %d, want 3", len(users))
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}

	last, total, err := svc.Directory(context.Background(), actorFor(env.memberA), 3, 3)
	if err != nil {
		t.Fatalf("Directory page 3: %v", err)
	}
	if len(last) != 1 || total != 7 {
		t.Errorf("page 3 = %d users, total %d, want 1 and 7", len(last), total)
	}
}
