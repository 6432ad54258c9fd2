package service

import (
	"context"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// AuditService exposes the read-only view over the audit trail. Listing
// never writes; only tenant admins and super admins may look.
type AuditService struct {
	store store.Store
}

func NewAuditService(st store.Store) *AuditService {
	return &AuditService{store: st}
}

type ListAuditLogsRequest struct {
	Action string
	Page   int
	Limit  int
}

func (s *AuditService) List(ctx context.Context, actor authz.Actor, tenantID string, req ListAuditLogsRequest) ([]model.AuditLog, int64, error) {
	if d := authz.Authorize(actor, authz.AuditList, authz.Target{TenantID: tenantID}); !d.Allowed {
		return nil, 0, apperr.Forbidden("%s", d.Reason)
	}
	logs, total, err := s.store.ListAuditLogs(ctx, store.AuditFilter{
		TenantID: tenantID,
		Action:   req.Action,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return logs, total, nil
}
