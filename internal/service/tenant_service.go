package service

import (
	"context"
	"errors"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// refreshActiveTenants recounts active tenants for the gauge after a
// mutation that can change the count. Best effort; a count failure never
// fails the request that triggered it.
func refreshActiveTenants(ctx context.Context, st store.Store) {
	_, total, err := st.ListTenants(ctx, store.TenantFilter{Status: string(model.TenantActive), Limit: 1})
	if err != nil {
		return
	}
	prometheus.UpdateActiveTenants(int(total))
}

// TenantService owns operations on the tenant record itself.
type TenantService struct {
	store store.Store
}

func NewTenantService(st store.Store) *TenantService {
	return &TenantService{store: st}
}

// Get returns a tenant. Super admins see any tenant, everyone else only
// their own.
func (s *TenantService) Get(ctx context.Context, actor authz.Actor, id string) (*model.Tenant, error) {
	if d := authz.Authorize(actor, authz.TenantRead, authz.Target{TenantID: id}); !d.Allowed {
		return nil, apperr.Forbidden("%s", d.Reason)
	}
	tenant, err := s.store.TenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, apperr.Internal(err)
	}
	return tenant, nil
}

type UpdateTenantRequest struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// Update changes tenant details. Changing the subscription plan
// recomputes the quota ceilings from the plan table.
func (s *TenantService) Update(ctx context.Context, actor authz.Actor, id string, req UpdateTenantRequest, ip string) (*model.Tenant, error) {
	if d := authz.Authorize(actor, authz.TenantUpdate, authz.Target{TenantID: id}); !d.Allowed {
		return nil, apperr.Forbidden("%s", d.Reason)
	}

	var status model.TenantStatus
	if req.Status != "" {
		parsed, err := model.ParseTenantStatus(req.Status)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		status = parsed
	}
	var plan model.Plan
	if req.SubscriptionPlan != "" {
		parsed, err := model.ParsePlan(req.SubscriptionPlan)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		plan = parsed
	}

	var tenant *model.Tenant
	err := s.store.Tx(ctx, func(tx store.Store) error {
		var err error
		tenant, err = tx.TenantByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("tenant not found")
			}
			return apperr.Internal(err)
		}
		if req.Name != "" {
			tenant.Name = req.Name
		}
		if status != "" {
			tenant.Status = status
		}
		if plan != "" {
			tenant.SubscriptionPlan = plan
			tenant.MaxUsers, tenant.MaxProjects = model.PlanLimits(plan)
		}
		if err := tx.UpdateTenant(ctx, tenant); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenant.ID,
			UserID:     actor.UserID,
			Action:     audit.ActionUpdateTenant,
			EntityType: "tenant",
			EntityID:   tenant.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	refreshActiveTenants(ctx, s.store)
	return tenant, nil
}

type ListTenantsRequest struct {
	Status string
	Plan   string
	Page   int
	Limit  int
}

// List returns all tenants, super admin only.
func (s *TenantService) List(ctx context.Context, actor authz.Actor, req ListTenantsRequest) ([]model.Tenant, int64, error) {
	if d := authz.Authorize(actor, authz.TenantList, authz.Target{}); !d.Allowed {
		return nil, 0, apperr.Forbidden("%s", d.Reason)
	}
	if req.Status != "" {
		if _, err := model.ParseTenantStatus(req.Status); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	if req.Plan != "" {
		if _, err := model.ParsePlan(req.Plan); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	tenants, total, err := s.store.ListTenants(ctx, store.TenantFilter{
		Status: req.Status,
		Plan:   req.Plan,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return tenants, total, nil
}
