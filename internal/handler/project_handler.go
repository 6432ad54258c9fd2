package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/service"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// ProjectHandler serves project endpoints
type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create adds a project to the actor's tenant
func (h *ProjectHandler) Create(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project create request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	project, err := h.projects.Create(c.Request().Context(), actor, req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Project created",
		zap.String("project_id", project.ID),
		zap.String("tenant_id", project.TenantID))
	prometheus.RecordEntityOperation("project", "create")
	return c.JSON(http.StatusCreated, echo.Map{"project": project})
}

// List returns the actor's tenant projects
func (h *ProjectHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	req := service.ListProjectsRequest{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	}

	projects, total, err := h.projects.List(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"projects":   projects,
		"pagination": pagination(total, page, limit),
	})
}

// Get returns a single project
func (h *ProjectHandler) Get(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	project, err := h.projects.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"project": project})
}

// Update changes a project's name, description or status
func (h *ProjectHandler) Update(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse project update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	project, err := h.projects.Update(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Project updated", zap.String("project_id", project.ID))
	prometheus.RecordEntityOperation("project", "update")
	return c.JSON(http.StatusOK, echo.Map{"project": project})
}

// Delete removes a project and all of its tasks
func (h *ProjectHandler) Delete(c echo.Context) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.projects.Delete(c.Request().Context(), actor, c.Param("id"), clientIP(c)); err != nil {
		return respondError(c, err)
	}

	log.Info("Project deleted", zap.String("project_id", c.Param("id")))
	prometheus.RecordEntityOperation("project", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "Project and its tasks deleted successfully"})
}
