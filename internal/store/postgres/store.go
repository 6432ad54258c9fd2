// Package postgres implements the entity store port on gorm/PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// Store is the gorm-backed entity store.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Tx runs fn inside one database transaction. The callback receives a
// store bound to the transaction handle; any error rolls everything back.
func (s *Store) Tx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}

func pageWindow(page, limit int) (offset, capped int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return (page - 1) * limit, limit
}

// --- tenants ---

func (s *Store) CreateTenant(ctx context.Context, t *model.Tenant) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) TenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) TenantByIDForUpdate(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) TenantBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) UpdateTenant(ctx context.Context, t *model.Tenant) error {
	return translate(s.db.WithContext(ctx).Save(t).Error)
}

func (s *Store) ListTenants(ctx context.Context, f store.TenantFilter) ([]model.Tenant, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Tenant{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Plan != "" {
		q = q.Where("subscription_plan = ?", f.Plan)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	offset, limit := pageWindow(f.Page, f.Limit)
	var tenants []model.Tenant
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tenants).Error
	return tenants, total, translate(err)
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByEmailInTenant(ctx context.Context, email, tenantID string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND tenant_id = ?", email, tenantID).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error)
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.User{}).Where("tenant_id = ?", f.TenantID)
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	offset, limit := pageWindow(f.Page, f.Limit)
	var users []model.User
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, translate(err)
}

func (s *Store) CountUsers(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ?", tenantID).
		Count(&n).Error
	return n, translate(err)
}

func (s *Store) CountActiveAdmins(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND role = ? AND is_active = ?", tenantID, model.RoleTenantAdmin, true).
		Count(&n).Error
	return n, translate(err)
}

// --- projects ---

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{}).Error)
}

func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]model.Project, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Project{}).Where("tenant_id = ?", f.TenantID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	offset, limit := pageWindow(f.Page, f.Limit)
	var projects []model.Project
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&projects).Error
	return projects, total, translate(err)
}

func (s *Store) CountProjects(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("tenant_id = ?", tenantID).
		Count(&n).Error
	return n, translate(err)
}

// --- tasks ---

func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) TaskByID(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *model.Task) error {
	return translate(s.db.WithContext(ctx).Save(t).Error)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{}).Error)
}

func (s *Store) DeleteTasksByProject(ctx context.Context, projectID string) error {
	return translate(s.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Task{}).Error)
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND tenant_id = ?", f.ProjectID, f.TenantID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	offset, limit := pageWindow(f.Page, f.Limit)
	var tasks []model.Task
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	return tasks, total, translate(err)
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).
		Count(&n).Error
	return n, translate(err)
}

// --- audit logs ---

func (s *Store) CreateAuditLog(ctx context.Context, a *model.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]model.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.AuditLog{}).Where("tenant_id = ?", f.TenantID)
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	offset, limit := pageWindow(f.Page, f.Limit)
	var logs []model.AuditLog
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, translate(err)
}
