package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/service"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// AuditHandler serves the audit log listing endpoint
type AuditHandler struct {
	audits *service.AuditService
}

func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List returns a tenant's audit trail, newest first
func (h *AuditHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	req := service.ListAuditLogsRequest{
		Action: c.QueryParam("action"),
		Page:   page,
		Limit:  limit,
	}

	logs, total, err := h.audits.List(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"auditLogs":  logs,
		"pagination": pagination(total, page, limit),
	})
}
