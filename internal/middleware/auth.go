package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/jwtutil"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"go.uber.org/zap"
)

const actorKey = "actor"

// JWTAuthMiddleware creates a middleware that validates JWT tokens and
// stores the authenticated actor in the request context
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing authorization header"})
			}

			// Check if the header format is valid
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization header format"})
			}

			// Validate the token
			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			role, err := model.ParseRole(claims.Role)
			if err != nil {
				log.Warn("Token carries unknown role", zap.String("role", claims.Role))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set(actorKey, authz.Actor{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				Role:     role,
			})
			log.Debug("JWT token validated successfully",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// ActorFromEcho returns the authenticated actor stored by JWTAuthMiddleware
func ActorFromEcho(c echo.Context) (authz.Actor, bool) {
	actor, ok := c.Get(actorKey).(authz.Actor)
	return actor, ok
}
