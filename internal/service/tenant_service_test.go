package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

func TestGetTenant(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	// Members read their own tenant.
	tenant, err := svc.Get(context.Background(), actorFor(env.memberA), env.tenantA.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tenant.Subdomain != "acme" {
		t.Errorf("subdomain = %s, want acme", tenant.Subdomain)
	}

	// But not anyone else's.
	if _, err := svc.Get(context.Background(), actorFor(env.memberA), env.tenantB.ID); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("cross-tenant get err = %v, want forbidden error", err)
	}
}

func TestUpdateTenantSuperAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	// Even the tenant's own admin cannot touch the tenant record.
	_, err := svc.Update(context.Background(), actorFor(env.adminA), env.tenantA.ID, UpdateTenantRequest{
		Name: "Acme Rebranded",
	}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
}

func TestUpdateTenantPlanChangeRecomputesLimits(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	tenant, err := svc.Update(context.Background(), superActor(), env.tenantA.ID, UpdateTenantRequest{
		SubscriptionPlan: "pro",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if tenant.SubscriptionPlan != model.PlanPro {
		t.Errorf("plan = %s, want pro", tenant.SubscriptionPlan)
	}
	if tenant.MaxUsers != 25 || tenant.MaxProjects != 15 {
		t.Errorf("limits = %d/%d, want 25/15", tenant.MaxUsers, tenant.MaxProjects)
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionUpdateTenant); n != 1 {
		t.Errorf("UPDATE_TENANT audit rows = %d, want 1", n)
	}
}

func TestSuspendTenantUpdatesActiveTenantsGauge(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	// Two active tenants seeded; suspending one leaves one.
	_, err := svc.Update(context.Background(), superActor(), env.tenantA.ID, UpdateTenantRequest{
		Status: "suspended",
	}, "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := testutil.ToFloat64(prometheus.ActiveTenantsGauge); got != 1 {
		t.Errorf("active tenants gauge = %v, want 1", got)
	}
}

func TestUpdateTenantUnknownPlan(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	_, err := svc.Update(context.Background(), superActor(), env.tenantA.ID, UpdateTenantRequest{
		SubscriptionPlan: "platinum",
	}, "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestListTenantsSuperAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTenantService(env.store)

	if _, _, err := svc.List(context.Background(), actorFor(env.adminA), ListTenantsRequest{}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("tenant admin list err = %v, want forbidden error", err)
	}

	tenants, total, err := svc.List(context.Background(), superActor(), ListTenantsRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(tenants) != 2 {
		t.Errorf("total = %d, len = %d, want 2/2", total, len(tenants))
	}
}
