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

// TenantHandler serves tenant administration endpoints
type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Get returns a single tenant
func (h *TenantHandler) Get(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenants.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tenant": tenant})
}

// Update changes tenant name, status or subscription plan
func (h *TenantHandler) Update(c echo.Context) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	log := logger.FromEcho(c)
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req service.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	tenant, err := h.tenants.Update(c.Request().Context(), actor, c.Param("id"), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Tenant updated", zap.String("tenant_id", tenant.ID))
	prometheus.RecordEntityOperation("tenant", "update")
	return c.JSON(http.StatusOK, echo.Map{"tenant": tenant})
}

// List returns all tenants, filtered by status and plan
func (h *TenantHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	req := service.ListTenantsRequest{
		Status: c.QueryParam("status"),
		Plan:   c.QueryParam("plan"),
		Page:   page,
		Limit:  limit,
	}

	tenants, total, err := h.tenants.List(c.Request().Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tenants":    tenants,
		"pagination": pagination(total, page, limit),
	})
}
