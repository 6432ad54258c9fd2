// Package memory implements the entity store port in process memory.
// Transactions take a global lock and work on a snapshot, so the combined
// check+insert of a quota reservation is serializable per tenant exactly
// as the postgres adapter's row lock makes it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

type state struct {
	tenants  map[string]model.Tenant
	users    map[string]model.User
	projects map[string]model.Project
	tasks    map[string]model.Task
	audits   []model.AuditLog
}

func newState() *state {
	return &state{
		tenants:  make(map[string]model.Tenant),
		users:    make(map[string]model.User),
		projects: make(map[string]model.Project),
		tasks:    make(map[string]model.Task),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.tenants {
		c.tenants[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.projects {
		c.projects[k] = v
	}
	for k, v := range st.tasks {
		c.tasks[k] = v
	}
	c.audits = append(c.audits, st.audits...)
	return c
}

// Store is the in-memory entity store.
type Store struct {
	mu   *sync.Mutex
	st   *state
	root *Store // nil on the root store, set on tx handles
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

// Tx locks the store, runs fn against a snapshot and installs the
// snapshot on success. An error from fn discards every change, mutation
// and audit row alike.
func (s *Store) Tx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.root != nil {
		// Already inside a transaction; participate in it.
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: snapshot, root: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

func (s *Store) read(fn func(st *state)) {
	if s.root == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	if s.root == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func pageWindow(page, limit, n int) (lo, hi int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	lo = (page - 1) * limit
	if lo > n {
		lo = n
	}
	hi = lo + limit
	if hi > n {
		hi = n
	}
	return lo, hi
}

// --- tenants ---

func (s *Store) CreateTenant(ctx context.Context, t *model.Tenant) error {
	return s.write(func(st *state) error {
		for _, existing := range st.tenants {
			if existing.Subdomain == t.Subdomain {
				return store.ErrDuplicate
			}
		}
		stamp(&t.CreatedAt, &t.UpdatedAt)
		st.tenants[t.ID] = *t
		return nil
	})
}

func (s *Store) TenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	var out *model.Tenant
	s.read(func(st *state) {
		if t, ok := st.tenants[id]; ok {
			out = &t
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) TenantByIDForUpdate(ctx context.Context, id string) (*model.Tenant, error) {
	// The transaction already holds the global lock.
	return s.TenantByID(ctx, id)
}

func (s *Store) TenantBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	var out *model.Tenant
	s.read(func(st *state) {
		for _, t := range st.tenants {
			if t.Subdomain == subdomain {
				copied := t
				out = &copied
				break
			}
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateTenant(ctx context.Context, t *model.Tenant) error {
	return s.write(func(st *state) error {
		if _, ok := st.tenants[t.ID]; !ok {
			return store.ErrNotFound
		}
		t.UpdatedAt = time.Now()
		st.tenants[t.ID] = *t
		return nil
	})
}

func (s *Store) ListTenants(ctx context.Context, f store.TenantFilter) ([]model.Tenant, int64, error) {
	var matched []model.Tenant
	s.read(func(st *state) {
		for _, t := range st.tenants {
			if f.Status != "" && string(t.Status) != f.Status {
				continue
			}
			if f.Plan != "" && string(t.SubscriptionPlan) != f.Plan {
				continue
			}
			matched = append(matched, t)
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	lo, hi := pageWindow(f.Page, f.Limit, len(matched))
	return matched[lo:hi], total, nil
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.write(func(st *state) error {
		for _, existing := range st.users {
			sameTenant := (existing.TenantID == nil && u.TenantID == nil) ||
				(existing.TenantID != nil && u.TenantID != nil && *existing.TenantID == *u.TenantID)
			if sameTenant && existing.Email == u.Email {
				return store.ErrDuplicate
			}
		}
		stamp(&u.CreatedAt, &u.UpdatedAt)
		st.users[u.ID] = *u
		return nil
	})
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	var out *model.User
	s.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				copied := u
				out = &copied
				break
			}
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UserByEmailInTenant(ctx context.Context, email, tenantID string) (*model.User, error) {
	var out *model.User
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email && u.InTenant(tenantID) {
				copied := u
				out = &copied
				break
			}
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	return s.write(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return store.ErrNotFound
		}
		u.UpdatedAt = time.Now()
		st.users[u.ID] = *u
		return nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.users, id)
		return nil
	})
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int64, error) {
	var matched []model.User
	s.read(func(st *state) {
		for _, u := range st.users {
			if !u.InTenant(f.TenantID) {
				continue
			}
			if f.Role != "" && string(u.Role) != f.Role {
				continue
			}
			matched = append(matched, u)
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	lo, hi := pageWindow(f.Page, f.Limit, len(matched))
	return matched[lo:hi], total, nil
}

func (s *Store) CountUsers(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.InTenant(tenantID) {
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) CountActiveAdmins(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	s.read(func(st *state) {
		for _, u := range st.users {
			if u.InTenant(tenantID) && u.Role == model.RoleTenantAdmin && u.IsActive {
				n++
			}
		}
	})
	return n, nil
}

// --- projects ---

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	return s.write(func(st *state) error {
		stamp(&p.CreatedAt, &p.UpdatedAt)
		st.projects[p.ID] = *p
		return nil
	})
}

func (s *Store) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	var out *model.Project
	s.read(func(st *state) {
		if p, ok := st.projects[id]; ok {
			out = &p
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	return s.write(func(st *state) error {
		if _, ok := st.projects[p.ID]; !ok {
			return store.ErrNotFound
		}
		p.UpdatedAt = time.Now()
		st.projects[p.ID] = *p
		return nil
	})
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.write(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.projects, id)
		return nil
	})
}

func (s *Store) ListProjects(ctx context.Context, f store.ProjectFilter) ([]model.Project, int64, error) {
	var matched []model.Project
	s.read(func(st *state) {
		for _, p := range st.projects {
			if p.TenantID != f.TenantID {
				continue
			}
			if f.Status != "" && string(p.Status) != f.Status {
				continue
			}
			matched = append(matched, p)
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	lo, hi := pageWindow(f.Page, f.Limit, len(matched))
	return matched[lo:hi], total, nil
}

func (s *Store) CountProjects(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	s.read(func(st *state) {
		for _, p := range st.projects {
			if p.TenantID == tenantID {
				n++
			}
		}
	})
	return n, nil
}

// --- tasks ---

func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	return s.write(func(st *state) error {
		stamp(&t.CreatedAt, &t.UpdatedAt)
		st.tasks[t.ID] = *t
		return nil
	})
}

func (s *Store) TaskByID(ctx context.Context, id string) (*model.Task, error) {
	var out *model.Task
	s.read(func(st *state) {
		if t, ok := st.tasks[id]; ok {
			out = &t
		}
	})
	if out == nil {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *model.Task) error {
	return s.write(func(st *state) error {
		if _, ok := st.tasks[t.ID]; !ok {
			return store.ErrNotFound
		}
		t.UpdatedAt = time.Now()
		st.tasks[t.ID] = *t
		return nil
	})
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.write(func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.tasks, id)
		return nil
	})
}

func (s *Store) DeleteTasksByProject(ctx context.Context, projectID string) error {
	return s.write(func(st *state) error {
		for id, t := range st.tasks {
			if t.ProjectID == projectID {
				delete(st.tasks, id)
			}
		}
		return nil
	})
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, int64, error) {
	var matched []model.Task
	s.read(func(st *state) {
		for _, t := range st.tasks {
			if t.ProjectID != f.ProjectID || t.TenantID != f.TenantID {
				continue
			}
			if f.Status != "" && string(t.Status) != f.Status {
				continue
			}
			if f.Priority != "" && string(t.Priority) != f.Priority {
				continue
			}
			if f.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != f.AssignedTo) {
				continue
			}
			matched = append(matched, t)
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	lo, hi := pageWindow(f.Page, f.Limit, len(matched))
	return matched[lo:hi], total, nil
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	s.read(func(st *state) {
		for _, t := range st.tasks {
			if t.ProjectID == projectID {
				n++
			}
		}
	})
	return n, nil
}

// --- audit logs ---

func (s *Store) CreateAuditLog(ctx context.Context, a *model.AuditLog) error {
	return s.write(func(st *state) error {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		st.audits = append(st.audits, *a)
		return nil
	})
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]model.AuditLog, int64, error) {
	var matched []model.AuditLog
	s.read(func(st *state) {
		for _, a := range st.audits {
			if a.TenantID == nil || *a.TenantID != f.TenantID {
				continue
			}
			if f.Action != "" && a.Action != f.Action {
				continue
			}
			matched = append(matched, a)
		}
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	lo, hi := pageWindow(f.Page, f.Limit, len(matched))
	return matched[lo:hi], total, nil
}
