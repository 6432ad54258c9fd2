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

// UserHandler serves user management endpoints
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create adds a user to a tenant
func (h *UserHandler) Create(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user create request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.Create(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	prometheus.RecordEntityOperation("user", "create")
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

// List returns the users of a tenant
func (h *UserHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	req := service.ListUsersRequest{
		Role:  c.QueryParam("role"),
		Page:  page,
		Limit: limit,
	}

	users, total, err := h.users.List(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": pagination(total, page, limit),
	})
}

// Directory returns the actor's own tenant members, for assignee pickers
func (h *UserHandler) Directory(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	users, total, err := h.users.Directory(c.Request().Context(), actor, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": pagination(total, page, limit),
	})
}

// Update changes a user's name, role or active flag
func (h *UserHandler) Update(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.users.Update(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User updated", zap.String("user_id", user.ID))
	prometheus.RecordEntityOperation("user", "update")
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Delete removes a user from their tenant
func (h *UserHandler) Delete(c echo.Context) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), actor, c.Param("id"), clientIP(c)); err != nil {
		return respondError(c, err)
	}

	log.Info("User deleted", zap.String("user_id", c.Param("id")))
	prometheus.RecordEntityOperation("user", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
