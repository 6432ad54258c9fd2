package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/service"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/jwtutil"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/prometheus"
)

// AuthHandler serves registration, login and session endpoints
type AuthHandler struct {
	auth *service.AuthService
	jwt  *jwtutil.JWTUtil
}

func NewAuthHandler(auth *service.AuthService, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

// Register creates a new tenant together with its first admin user
func (h *AuthHandler) Register(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	log := logger.FromEcho(c)
	prometheus.RegisterTenantCounter.Inc()

	var req service.RegisterTenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	result, err := h.auth.RegisterTenant(c.Request().Context(), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Tenant registered",
		zap.String("tenant_id", result.Tenant.ID),
		zap.String("subdomain", result.Tenant.Subdomain))
	prometheus.RecordEntityOperation("tenant", "create")

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant registered successfully",
		"tenant":  result.Tenant,
		"admin":   result.Admin,
	})
}

// Login verifies credentials and issues a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	result, err := h.auth.Login(c.Request().Context(), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}

	tenantID := ""
	if result.Tenant != nil {
		tenantID = result.Tenant.ID
	}

	token, err := h.jwt.GenerateToken(result.User.Email, result.User.ID, tenantID, string(result.User.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", result.User.Email),
		zap.String("tenant_id", tenantID),
		zap.String("role", string(result.User.Role)))

	response := echo.Map{
		"token": token,
		"user":  result.User,
	}
	if result.Tenant != nil {
		response["tenant"] = result.Tenant
	}
	return c.JSON(http.StatusOK, response)
}

// Logout records the logout for the authenticated user
func (h *AuthHandler) Logout(c echo.Context) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.auth.Logout(c.Request().Context(), actor, clientIP(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile and tenant
func (h *AuthHandler) Me(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	result, err := h.auth.Me(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
