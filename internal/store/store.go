// Package store defines the entity store port consumed by the service
// layer. The postgres adapter is the production implementation; the
// memory adapter backs the tests.
package store

import (
	"context"
	"errors"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
)

// ErrNotFound is returned when a lookup misses. Adapters translate their
// driver's sentinel into this one.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness constraint is violated.
var ErrDuplicate = errors.New("duplicate record")

// TenantFilter narrows tenant listings.
type TenantFilter struct {
	Status string
	Plan   string
	Page   int
	Limit  int
}

// UserFilter narrows user listings within a tenant.
type UserFilter struct {
	TenantID string
	Role     string
	Page     int
	Limit    int
}

// ProjectFilter narrows project listings within a tenant.
type ProjectFilter struct {
	TenantID string
	Status   string
	Page     int
	Limit    int
}

// TaskFilter narrows task listings within a project.
type TaskFilter struct {
	ProjectID  string
	TenantID   string
	Status     string
	Priority   string
	AssignedTo string
	Page       int
	Limit      int
}

// AuditFilter narrows audit log listings within a tenant.
type AuditFilter struct {
	TenantID string
	Action   string
	Page     int
	Limit    int
}

// Store is the transactional entity store. All reads outside Tx run with
// read-committed visibility; mutations must happen inside Tx so the
// mutation and its audit record commit or roll back together.
type Store interface {
	// Tx runs fn inside a single transaction. Any error from fn rolls the
	// whole transaction back and is returned unchanged.
	Tx(ctx context.Context, fn func(tx Store) error) error

	CreateTenant(ctx context.Context, t *model.Tenant) error
	TenantByID(ctx context.Context, id string) (*model.Tenant, error)
	// TenantByIDForUpdate locks the tenant row for the duration of the
	// enclosing transaction, serializing concurrent quota reservations
	// against the same tenant. Must be called inside Tx.
	TenantByIDForUpdate(ctx context.Context, id string) (*model.Tenant, error)
	TenantBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error)
	UpdateTenant(ctx context.Context, t *model.Tenant) error
	ListTenants(ctx context.Context, f TenantFilter) ([]model.Tenant, int64, error)

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByEmailInTenant(ctx context.Context, email, tenantID string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, f UserFilter) ([]model.User, int64, error)
	CountUsers(ctx context.Context, tenantID string) (int64, error)
	CountActiveAdmins(ctx context.Context, tenantID string) (int64, error)

	CreateProject(ctx context.Context, p *model.Project) error
	ProjectByID(ctx context.Context, id string) (*model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, int64, error)
	CountProjects(ctx context.Context, tenantID string) (int64, error)

	CreateTask(ctx context.Context, t *model.Task) error
	TaskByID(ctx context.Context, id string) (*model.Task, error)
	UpdateTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, id string) error
	DeleteTasksByProject(ctx context.Context, projectID string) error
	ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, int64, error)
	CountTasksByProject(ctx context.Context, projectID string) (int64, error)

	CreateAuditLog(ctx context.Context, a *model.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error)
}
