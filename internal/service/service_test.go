package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store/memory"
)

// testEnv holds a fresh in-memory store seeded with two tenants, each
// with one admin and one regular member, on the free plan.
type testEnv struct {
	store *memory.Store

	tenantA *model.Tenant
	adminA  *model.User
	memberA *model.User

	tenantB *model.Tenant
	adminB  *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.NewStore()
	env := &testEnv{store: st}

	env.tenantA = seedTenant(t, st, "acme", model.PlanFree)
	env.adminA = seedUser(t, st, env.tenantA.ID, "admin@acme.test", model.RoleTenantAdmin)
	env.memberA = seedUser(t, st, env.tenantA.ID, "member@acme.test", model.RoleUser)

	env.tenantB = seedTenant(t, st, "globex", model.PlanFree)
	env.adminB = seedUser(t, st, env.tenantB.ID, "admin@globex.test", model.RoleTenantAdmin)

	return env
}

func seedTenant(t *testing.T, st store.Store, subdomain string, plan model.Plan) *model.Tenant {
	t.Helper()
	maxUsers, maxProjects := model.PlanLimits(plan)
	tenant := &model.Tenant{
		ID:               uuid.NewString(),
		Name:             subdomain,
		Subdomain:        subdomain,
		Status:           model.TenantActive,
		SubscriptionPlan: plan,
		MaxUsers:         maxUsers,
		MaxProjects:      maxProjects,
	}
	if err := st.CreateTenant(context.Background(), tenant); err != nil {
		t.Fatalf("seed tenant %s: %v", subdomain, err)
	}
	return tenant
}

func seedUser(t *testing.T, st store.Store, tenantID, email string, role model.Role) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		ID:           uuid.NewString(),
		TenantID:     &tenantID,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     email,
		Role:         role,
		IsActive:     true,
	}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedProject(t *testing.T, st store.Store, tenantID, createdBy, name string) *model.Project {
	t.Helper()
	project := &model.Project{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      name,
		Status:    model.ProjectActive,
		CreatedBy: createdBy,
	}
	if err := st.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return project
}

func actorFor(u *model.User) authz.Actor {
	tenantID := ""
	if u.TenantID != nil {
		tenantID = *u.TenantID
	}
	return authz.Actor{UserID: u.ID, TenantID: tenantID, Role: u.Role}
}

func superActor() authz.Actor {
	return authz.Actor{UserID: uuid.NewString(), Role: model.RoleSuperAdmin}
}

// countAudit counts audit rows for a tenant with the given action.
func countAudit(t *testing.T, st store.Store, tenantID, action string) int {
	t.Helper()
	_, total, err := st.ListAuditLogs(context.Background(), store.AuditFilter{
		TenantID: tenantID,
		Action:   action,
		Limit:    100,
	})
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	return int(total)
}
