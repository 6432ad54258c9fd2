package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/lifecycle"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/quota"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// ProjectService owns project operations within a tenant.
type ProjectService struct {
	store store.Store
}

func NewProjectService(st store.Store) *ProjectService {
	return &ProjectService{store: st}
}

// projectDeny turns an authorization denial into the caller-facing error.
// Cross-tenant misses surface as not-found so foreign projects stay
// invisible; every other denial is forbidden.
func projectDeny(d authz.Decision) error {
	if d.Reason == "cross-tenant access" {
		return apperr.NotFound("project not found")
	}
	return apperr.Forbidden("%s", d.Reason)
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes a project in the actor's tenant. Quota reservation, insert
// and audit record commit together or not at all.
func (s *ProjectService) Create(ctx context.Context, actor authz.Actor, req CreateProjectRequest, ip string) (*model.Project, error) {
	if req.Name == "" {
		return nil, apperr.Validation("project name is required")
	}
	if d := authz.Authorize(actor, authz.ProjectCreate, authz.Target{TenantID: actor.TenantID}); !d.Allowed {
		return nil, projectDeny(d)
	}

	project := &model.Project{
		ID:          uuid.NewString(),
		TenantID:    actor.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.ProjectActive,
		CreatedBy:   actor.UserID,
	}

	err := s.store.Tx(ctx, func(tx store.Store) error {
		if err := quota.Reserve(ctx, tx, actor.TenantID, quota.KindProject); err != nil {
			return err
		}
		if err := tx.CreateProject(ctx, project); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   actor.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionCreateProject,
			EntityType: "project",
			EntityID:   project.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

type ListProjectsRequest struct {
	Status string
	Page   int
	Limit  int
}

// List returns the actor's tenant projects.
func (s *ProjectService) List(ctx context.Context, actor authz.Actor, req ListProjectsRequest) ([]model.Project, int64, error) {
	if d := authz.Authorize(actor, authz.ProjectRead, authz.Target{TenantID: actor.TenantID}); !d.Allowed {
		return nil, 0, projectDeny(d)
	}
	if req.Status != "" {
		if _, err := model.ParseProjectStatus(req.Status); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	projects, total, err := s.store.ListProjects(ctx, store.ProjectFilter{
		TenantID: actor.TenantID,
		Status:   req.Status,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return projects, total, nil
}

// Get returns one project; cross-tenant lookups miss.
func (s *ProjectService) Get(ctx context.Context, actor authz.Actor, id string) (*model.Project, error) {
	project, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, apperr.Internal(err)
	}
	if d := authz.Authorize(actor, authz.ProjectRead, authz.Target{TenantID: project.TenantID}); !d.Allowed {
		return nil, projectDeny(d)
	}
	return project, nil
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Update changes a project's details.
func (s *ProjectService) Update(ctx context.Context, actor authz.Actor, id string, req UpdateProjectRequest, ip string) (*model.Project, error) {
	var status model.ProjectStatus
	if req.Status != "" {
		parsed, err := model.ParseProjectStatus(req.Status)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		status = parsed
	}

	current, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, apperr.Internal(err)
	}
	if d := authz.Authorize(actor, authz.ProjectUpdate, authz.Target{TenantID: current.TenantID}); !d.Allowed {
		return nil, projectDeny(d)
	}

	var project *model.Project
	err = s.store.Tx(ctx, func(tx store.Store) error {
		var err error
		project, err = tx.ProjectByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("project not found")
			}
			return apperr.Internal(err)
		}
		if req.Name != "" {
			project.Name = req.Name
		}
		if req.Description != "" {
			project.Description = req.Description
		}
		if status != "" {
			project.Status = status
		}
		if err := tx.UpdateProject(ctx, project); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   project.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionUpdateProject,
			EntityType: "project",
			EntityID:   project.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and all of its tasks as one atomic unit.
func (s *ProjectService) Delete(ctx context.Context, actor authz.Actor, id string, ip string) error {
	current, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("project not found")
		}
		return apperr.Internal(err)
	}
	if d := authz.Authorize(actor, authz.ProjectDelete, authz.Target{TenantID: current.TenantID}); !d.Allowed {
		return projectDeny(d)
	}

	return s.store.Tx(ctx, func(tx store.Store) error {
		project, err := tx.ProjectByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("project not found")
			}
			return apperr.Internal(err)
		}
		if err := lifecycle.DeleteProjectCascade(ctx, tx, project); err != nil {
			return err
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   project.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionDeleteProject,
			EntityType: "project",
			EntityID:   project.ID,
			IP:         ip,
		})
	})
}
