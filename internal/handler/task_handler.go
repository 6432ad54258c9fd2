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

// TaskHandler serves task endpoints
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create adds a task to a project
func (h *TaskHandler) Create(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task create request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	task, err := h.tasks.Create(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task created",
		zap.String("task_id", task.ID),
		zap.String("project_id", task.ProjectID))
	prometheus.RecordEntityOperation("task", "create")
	return c.JSON(http.StatusCreated, echo.Map{"task": task})
}

// List returns the tasks of a project
func (h *TaskHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	req := service.ListTasksRequest{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssignedTo: c.QueryParam("assigned_to"),
		Page:       page,
		Limit:      limit,
	}

	tasks, total, err := h.tasks.List(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tasks":      tasks,
		"pagination": pagination(total, page, limit),
	})
}

// Update changes a task's fields
func (h *TaskHandler) Update(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	task, err := h.tasks.Update(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task updated", zap.String("task_id", task.ID))
	prometheus.RecordEntityOperation("task", "update")
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

// UpdateStatus moves a task through its workflow states
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task status request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	task, err := h.tasks.UpdateStatus(c.Request().Context(), actor, c.Param("id"), req.Status, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Task status updated",
		zap.String("task_id", task.ID),
		zap.String("status", string(task.Status)))
	prometheus.RecordEntityOperation("task", "update_status")
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

// Delete removes a task
func (h *TaskHandler) Delete(c echo.Context) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.Request().Context(), actor, c.Param("id"), clientIP(c)); err != nil {
		return respondError(c, err)
	}

	log.Info("Task deleted", zap.String("task_id", c.Param("id")))
	prometheus.RecordEntityOperation("task", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}
