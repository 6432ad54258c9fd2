// Package audit appends the immutable trail of accepted mutations. Record
// runs inside the caller's open transaction so the mutation and its audit
// row commit or roll back as one unit. Reads are never audited; a failed
// login is the one write that happens without a domain mutation.
package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// Action names, one per mutating operation.
const (
	ActionRegisterTenant   = "REGISTER_TENANT"
	ActionLogin            = "LOGIN"
	ActionLoginFailed      = "LOGIN_FAILED"
	ActionLogout           = "LOGOUT"
	ActionUpdateTenant     = "UPDATE_TENANT"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionDeleteProject    = "DELETE_PROJECT"
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionUpdateTaskStatus = "UPDATE_TASK_STATUS"
	ActionDeleteTask       = "DELETE_TASK"
)

// Entry describes one audit row. TenantID and UserID may be empty when
// the actor is a super admin outside any tenant.
type Entry struct {
	TenantID   string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	IP         string
}

// Record appends one row through tx. Callers invoke it exactly once per
// accepted mutation, after the mutation's writes, inside the same
// transaction.
func Record(ctx context.Context, tx store.Store, e Entry) error {
	row := &model.AuditLog{
		ID:         uuid.NewString(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		IPAddress:  e.IP,
	}
	if e.TenantID != "" {
		tenantID := e.TenantID
		row.TenantID = &tenantID
	}
	if e.UserID != "" {
		userID := e.UserID
		row.UserID = &userID
	}
	if err := tx.CreateAuditLog(ctx, row); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
