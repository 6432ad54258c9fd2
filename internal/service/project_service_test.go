package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
)

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)

	project, err := svc.Create(context.Background(), actorFor(env.memberA), CreateProjectRequest{
		Name:        "Website",
		Description: "Marketing site",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if project.Status != model.ProjectActive {
		t.Errorf("status = %s, want active", project.Status)
	}
	if project.TenantID != env.tenantA.ID {
		t.Errorf("tenant = %s, want %s", project.TenantID, env.tenantA.ID)
	}
	if project.CreatedBy != env.memberA.ID {
		t.Errorf("created_by = %s, want %s", project.CreatedBy, env.memberA.ID)
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionCreateProject); n != 1 {
		t.Errorf("CREATE_PROJECT audit rows = %d, want 1", n)
	}
}

func TestCreateProjectQuota(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	actor := actorFor(env.adminA)

	// Free plan allows 3 projects.
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), actor, CreateProjectRequest{
			Name: fmt.Sprintf("Project %d", i),
		}, ""); err != nil {
			t.Fatalf("create project %d: %v", i, err)
		}
	}

	_, err := svc.Create(context.Background(), actor, CreateProjectRequest{Name: "Overflow"}, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden quota error", err)
	}

	// The denial left no project and no audit row behind.
	n, countErr := env.store.CountProjects(context.Background(), env.tenantA.ID)
	if countErr != nil {
		t.Fatalf("count projects: %v", countErr)
	}
	if n != 3 {
		t.Errorf("project count = %d, want 3", n)
	}
	if got := countAudit(t, env.store, env.tenantA.ID, audit.ActionCreateProject); got != 3 {
		t.Errorf("CREATE_PROJECT audit rows = %d, want 3", got)
	}
}

func TestCreateProjectQuotaConcurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	actor := actorFor(env.adminA)

	var wg sync.WaitGroup
	var created atomic.Int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), actor, CreateProjectRequest{
				Name: fmt.Sprintf("Race %d", i),
			}, ""); err == nil {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 3 {
		t.Errorf("concurrent creates admitted = %d, want 3", created.Load())
	}
}

func TestGetProjectCrossTenantHidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	project := seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "Secret")

	// Tenant B's admin sees a miss, not a denial.
	_, err := svc.Get(context.Background(), actorFor(env.adminB), project.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found error", err)
	}

	// The super admin sees everything.
	if _, err := svc.Get(context.Background(), superActor(), project.ID); err != nil {
		t.Fatalf("super admin get: %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	project := seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "Old Name")

	updated, err := svc.Update(context.Background(), actorFor(env.memberA), project.ID, UpdateProjectRequest{
		Name:   "New Name",
		Status: "completed",
	}, "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "New Name" || updated.Status != model.ProjectCompleted {
		t.Errorf("got %s/%s, want New Name/completed", updated.Name, updated.Status)
	}
	if n := countAudit(t, env.store, env.tenantA.ID, audit.ActionUpdateProject); n != 1 {
		t.Errorf("UPDATE_PROJECT audit rows = %d, want 1", n)
	}
}

func TestUpdateProjectUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	project := seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "P")

	_, err := svc.Update(context.Background(), actorFor(env.adminA), project.ID, UpdateProjectRequest{
		Status: "paused",
	}, "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	env := newTestEnv(t)
	projects := NewProjectService(env.store)
	tasks := NewTaskService(env.store)
	project := seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "Doomed")

	for i := 0; i < 4; i++ {
		if _, err := tasks.Create(context.Background(), actorFor(env.memberA), project.ID, CreateTaskRequest{
			Title: fmt.Sprintf("Task %d", i),
		}, ""); err != nil {
			t.Fatalf("create task %d: %v", i, err)
		}
	}

	if err := projects.Delete(context.Background(), actorFor(env.adminA), project.ID, ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.store.ProjectByID(context.Background(), project.ID); err == nil {
		t.Error("deleted project still present")
	}
	n, err := env.store.CountTasksByProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 0 {
		t.Errorf("orphaned tasks = %d, want 0", n)
	}
	if got := countAudit(t, env.store, env.tenantA.ID, audit.ActionDeleteProject); got != 1 {
		t.Errorf("DELETE_PROJECT audit rows = %d, want 1", got)
	}
}

func TestDeleteProjectByMemberForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	project := seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "Kept")

	err := svc.Delete(context.Background(), actorFor(env.memberA), project.ID, "")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want forbidden error", err)
	}
	if _, getErr := env.store.ProjectByID(context.Background(), project.ID); getErr != nil {
		t.Error("project deleted despite denial")
	}
}

func TestListProjectsScopedToTenant(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store)
	seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "A1")
	seedProject(t, env.store, env.tenantA.ID, env.adminA.ID, "A2")
	seedProject(t, env.store, env.tenantB.ID, env.adminB.ID, "B1")

	projects, total, err := svc.List(context.Background(), actorFor(env.memberA), ListProjectsRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(projects) != 2 {
		t.Errorf("total = %d, len = %d, want 2/2", total, len(projects))
	}
	for _, p := range projects {
		if p.TenantID != env.tenantA.ID {
			t.Errorf("list leaked project %s from another tenant", p.Name)
		}
	}
}
