package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"go.uber.org/zap"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set("X-Request-ID", requestID)
			}

			// Add request ID to response header
			c.Response().Header().Set("X-Request-ID", requestID)

			// Request-scoped logger carrying the request ID, available to
			// handlers via the echo context and downstream code via the
			// request context
			ctxLogger := logger.GetLogger().With(zap.String("request_id", requestID))
			logger.ToEcho(c, ctxLogger)

			return next(c)
		}
	}
}
