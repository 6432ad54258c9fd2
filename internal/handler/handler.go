package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/middleware"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/service"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// respondError translates application errors into HTTP responses. Login
// failures get 401 so clients can distinguish bad credentials from a
// policy denial.
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	if err == service.ErrInvalidCredentials || err == service.ErrInvalidTenant {
		prometheus.RecordError("unauthorized")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	kind := apperr.KindOf(err)
	prometheus.RecordError(string(kind))

	switch kind {
	case apperr.KindValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case apperr.KindForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case apperr.KindConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("Unhandled request error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// requireActor returns the authenticated actor or a 401 for echo's error
// handler to render
func requireActor(c echo.Context) (authz.Actor, error) {
	actor, ok := middleware.ActorFromEcho(c)
	if !ok {
		return authz.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return actor, nil
}

// pageParams reads page/limit query parameters, leaving zero values for
// the store's defaults
func pageParams(c echo.Context) (page, limit int) {
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		limit = v
	}
	return page, limit
}

// pagination builds the pagination envelope used by all list responses
func pagination(total int64, page, limit int) echo.Map {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return echo.Map{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages,
	}
}

// clientIP returns the originating address for audit records
func clientIP(c echo.Context) string {
	return c.RealIP()
}
