// Package lifecycle enforces the structural invariants that span more
// than one entity: last-admin protection, cascading project deletion and
// task assignee scoping. Every check runs inside the caller's open
// transaction.
package lifecycle

import (
	"context"
	"errors"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// EnsureAdminRemains denies removing or demoting u when u is the last
// active tenant_admin of its tenant.
func EnsureAdminRemains(ctx context.Context, tx store.Store, u *model.User) error {
	if u.Role != model.RoleTenantAdmin || u.TenantID == nil {
		return nil
	}
	n, err := tx.CountActiveAdmins(ctx, *u.TenantID)
	if err != nil {
		return apperr.Internal(err)
	}
	if n <= 1 && u.IsActive {
		return apperr.Forbidden("cannot remove the last tenant admin")
	}
	return nil
}

// DeleteProjectCascade removes the project's tasks and then the project
// itself. Both deletes ride the caller's transaction, so a failure at any
// step leaves nothing partially removed.
func DeleteProjectCascade(ctx context.Context, tx store.Store, p *model.Project) error {
	if err := tx.DeleteTasksByProject(ctx, p.ID); err != nil {
		return apperr.Internal(err)
	}
	if err := tx.DeleteProject(ctx, p.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ValidateAssignee checks that the referenced user exists and belongs to
// the task's tenant.
func ValidateAssignee(ctx context.Context, tx store.Store, tenantID, userID string) error {
	assignee, err := tx.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("assigned user not found in tenant")
		}
		return apperr.Internal(err)
	}
	if !assignee.InTenant(tenantID) {
		return apperr.NotFound("assigned user not found in tenant")
	}
	return nil
}
