package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/lifecycle"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// TaskService owns task operations within a project.
type TaskService struct {
	store store.Store
}

func NewTaskService(st store.Store) *TaskService {
	return &TaskService{store: st}
}

func taskDeny(d authz.Decision) error {
	if d.Reason == "cross-tenant access" {
		return apperr.NotFound("task not found")
	}
	return apperr.Forbidden("%s", d.Reason)
}

// projectInTenant loads a project and hides it from foreign tenants.
func (s *TaskService) projectInTenant(ctx context.Context, actor authz.Actor, projectID string) (*model.Project, error) {
	project, err := s.store.ProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, apperr.Internal(err)
	}
	if actor.Role != model.RoleSuperAdmin && actor.TenantID != project.TenantID {
		return nil, apperr.NotFound("project not found")
	}
	return project, nil
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// Create makes a task in a project. New tasks start in todo; the assignee,
// when given, must be a member of the project's tenant.
func (s *TaskService) Create(ctx context.Context, actor authz.Actor, projectID string, req CreateTaskRequest, ip string) (*model.Task, error) {
	if req.Title == "" {
		return nil, apperr.Validation("task title is required")
	}
	priority := model.PriorityMedium
	if req.Priority != "" {
		parsed, err := model.ParseTaskPriority(req.Priority)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		priority = parsed
	}

	project, err := s.projectInTenant(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if d := authz.Authorize(actor, authz.TaskCreate, authz.Target{TenantID: project.TenantID}); !d.Allowed {
		return nil, taskDeny(d)
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskTodo,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != "" {
		assignedTo := req.AssignedTo
		task.AssignedTo = &assignedTo
	}

	err = s.store.Tx(ctx, func(tx store.Store) error {
		if task.AssignedTo != nil {
			if err := lifecycle.ValidateAssignee(ctx, tx, task.TenantID, *task.AssignedTo); err != nil {
				return err
			}
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   task.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionCreateTask,
			EntityType: "task",
			EntityID:   task.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

type ListTasksRequest struct {
	Status     string
	Priority   string
	AssignedTo string
	Page       int
	Limit      int
}

// List returns a project's tasks.
func (s *TaskService) List(ctx context.Context, actor authz.Actor, projectID string, req ListTasksRequest) ([]model.Task, int64, error) {
	project, err := s.projectInTenant(ctx, actor, projectID)
	if err != nil {
		return nil, 0, err
	}
	if d := authz.Authorize(actor, authz.TaskRead, authz.Target{TenantID: project.TenantID}); !d.Allowed {
		return nil, 0, taskDeny(d)
	}
	if req.Status != "" {
		if _, err := model.ParseTaskStatus(req.Status); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	if req.Priority != "" {
		if _, err := model.ParseTaskPriority(req.Priority); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	tasks, total, err := s.store.ListTasks(ctx, store.TaskFilter{
		ProjectID:  project.ID,
		TenantID:   project.TenantID,
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
		Page:       req.Page,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return tasks, total, nil
}

func (s *TaskService) taskForActor(ctx context.Context, actor authz.Actor, id string, action authz.Action) (*model.Task, error) {
	task, err := s.store.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, apperr.Internal(err)
	}
	if d := authz.Authorize(actor, action, authz.Target{TenantID: task.TenantID}); !d.Allowed {
		return nil, taskDeny(d)
	}
	return task, nil
}

type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// Update changes a task's details. A new assignee is validated against
// the task's tenant inside the transaction.
func (s *TaskService) Update(ctx context.Context, actor authz.Actor, id string, req UpdateTaskRequest, ip string) (*model.Task, error) {
	var status model.TaskStatus
	if req.Status != "" {
		parsed, err := model.ParseTaskStatus(req.Status)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		status = parsed
	}
	var priority model.TaskPriority
	if req.Priority != "" {
		parsed, err := model.ParseTaskPriority(req.Priority)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		priority = parsed
	}

	if _, err := s.taskForActor(ctx, actor, id, authz.TaskUpdate); err != nil {
		return nil, err
	}

	var task *model.Task
	err := s.store.Tx(ctx, func(tx store.Store) error {
		var err error
		task, err = tx.TaskByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("task not found")
			}
			return apperr.Internal(err)
		}
		if req.AssignedTo != "" && (task.AssignedTo == nil || *task.AssignedTo != req.AssignedTo) {
			if err := lifecycle.ValidateAssignee(ctx, tx, task.TenantID, req.AssignedTo); err != nil {
				return err
			}
			assignedTo := req.AssignedTo
			task.AssignedTo = &assignedTo
		}
		if req.Title != "" {
			task.Title = req.Title
		}
		if req.Description != "" {
			task.Description = req.Description
		}
		if status != "" {
			task.Status = status
		}
		if priority != "" {
			task.Priority = priority
		}
		if req.DueDate != nil {
			task.DueDate = req.DueDate
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   task.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionUpdateTask,
			EntityType: "task",
			EntityID:   task.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task between workflow states. Any direct
// transition is allowed; unknown states are rejected before the
// transaction opens.
func (s *TaskService) UpdateStatus(ctx context.Context, actor authz.Actor, id string, rawStatus string, ip string) (*model.Task, error) {
	if rawStatus == "" {
		return nil, apperr.Validation("status is required")
	}
	status, err := model.ParseTaskStatus(rawStatus)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	if _, err := s.taskForActor(ctx, actor, id, authz.TaskUpdate); err != nil {
		return nil, err
	}

	var task *model.Task
	err = s.store.Tx(ctx, func(tx store.Store) error {
		var err error
		task, err = tx.TaskByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("task not found")
			}
			return apperr.Internal(err)
		}
		task.Status = status
		if err := tx.UpdateTask(ctx, task); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   task.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionUpdateTaskStatus,
			EntityType: "task",
			EntityID:   task.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, actor authz.Actor, id string, ip string) error {
	if _, err := s.taskForActor(ctx, actor, id, authz.TaskDelete); err != nil {
		return err
	}
	return s.store.Tx(ctx, func(tx store.Store) error {
		task, err := tx.TaskByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("task not found")
			}
			return apperr.Internal(err)
		}
		if err := tx.DeleteTask(ctx, id); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   task.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionDeleteTask,
			EntityType: "task",
			EntityID:   task.ID,
			IP:         ip,
		})
	})
}
