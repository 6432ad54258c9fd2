package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/pkg/logger"
)

// Login failure sentinels. The HTTP layer maps these to 401 instead of
// the usual forbidden status.
var (
	ErrInvalidCredentials = apperr.Forbidden("invalid credentials")
	ErrInvalidTenant      = apperr.Forbidden("invalid tenant")
)

// AuthService owns tenant registration and the authentication flow. The
// credential comparison lives here, outside the authorization/quota/audit
// core, which only ever sees an already verified actor.
type AuthService struct {
	store store.Store
}

func NewAuthService(st store.Store) *AuthService {
	return &AuthService{store: st}
}

type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName"`
}

type RegisterTenantResult struct {
	Tenant *model.Tenant `json:"tenant"`
	Admin  *model.User   `json:"admin"`
}

// RegisterTenant creates a tenant and its first tenant_admin in one
// transaction, with the registration audit record riding along.
func (s *AuthService) RegisterTenant(ctx context.Context, req RegisterTenantRequest, ip string) (*RegisterTenantResult, error) {
	if req.TenantName == "" || req.Subdomain == "" || req.AdminEmail == "" ||
		req.AdminPassword == "" || req.AdminFullName == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if len(req.AdminPassword) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	if _, err := s.store.TenantBySubdomain(ctx, req.Subdomain); err == nil {
		return nil, apperr.Conflict("subdomain already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	maxUsers, maxProjects := model.PlanLimits(model.PlanFree)
	tenant := &model.Tenant{
		ID:               uuid.NewString(),
		Name:             req.TenantName,
		Subdomain:        req.Subdomain,
		Status:           model.TenantActive,
		SubscriptionPlan: model.PlanFree,
		MaxUsers:         maxUsers,
		MaxProjects:      maxProjects,
	}
	admin := &model.User{
		ID:           uuid.NewString(),
		TenantID:     &tenant.ID,
		Email:        req.AdminEmail,
		PasswordHash: string(hash),
		FullName:     req.AdminFullName,
		Role:         model.RoleTenantAdmin,
		IsActive:     true,
	}

	err = s.store.Tx(ctx, func(tx store.Store) error {
		if err := tx.CreateTenant(ctx, tenant); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("subdomain already exists")
			}
			return apperr.Internal(err)
		}
		if err := tx.CreateUser(ctx, admin); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenant.ID,
			UserID:     admin.ID,
			Action:     audit.ActionRegisterTenant,
			EntityType: "tenant",
			EntityID:   tenant.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	refreshActiveTenants(ctx, s.store)
	return &RegisterTenantResult{Tenant: tenant, Admin: admin}, nil
}

type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

type LoginResult struct {
	User   *model.User
	Tenant *model.Tenant
}

// Login verifies credentials and tenant membership. A credential mismatch
// writes a LOGIN_FAILED audit row in its own minimal transaction; a
// successful login writes LOGIN the same way. Token issuance is the HTTP
// layer's job.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logger.FromContext(ctx).Warn("Login failed",
			zap.String("email", req.Email),
			zap.String("ip", ip))
		recordErr := s.store.Tx(ctx, func(tx store.Store) error {
			return audit.Record(ctx, tx, audit.Entry{
				TenantID:   tenantIDOf(user),
				UserID:     user.ID,
				Action:     audit.ActionLoginFailed,
				EntityType: "user",
				EntityID:   user.ID,
				IP:         ip,
			})
		})
		if recordErr != nil {
			return nil, recordErr
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("account is inactive")
	}

	var tenant *model.Tenant
	if user.Role != model.RoleSuperAdmin {
		if req.TenantSubdomain == "" {
			return nil, apperr.Validation("tenant subdomain is required")
		}
		tenant, err = s.store.TenantBySubdomain(ctx, req.TenantSubdomain)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFound("tenant not found")
			}
			return nil, apperr.Internal(err)
		}
		if !user.InTenant(tenant.ID) {
			return nil, ErrInvalidTenant
		}
		if tenant.Status == model.TenantSuspended {
			return nil, apperr.Forbidden("tenant is suspended")
		}
	}

	err = s.store.Tx(ctx, func(tx store.Store) error {
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantIDOf(user),
			UserID:     user.ID,
			Action:     audit.ActionLogin,
			EntityType: "user",
			EntityID:   user.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tenant: tenant}, nil
}

// Logout records the logout; there is no server-side session to tear down.
func (s *AuthService) Logout(ctx context.Context, actor authz.Actor, ip string) error {
	return s.store.Tx(ctx, func(tx store.Store) error {
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   actor.TenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionLogout,
			EntityType: "user",
			EntityID:   actor.UserID,
			IP:         ip,
		})
	})
}

type MeResult struct {
	User   *model.User   `json:"user"`
	Tenant *model.Tenant `json:"tenant,omitempty"`
}

// Me returns the actor's own user record and tenant, if any.
func (s *AuthService) Me(ctx context.Context, actor authz.Actor) (*MeResult, error) {
	user, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	out := &MeResult{User: user}
	if user.TenantID != nil {
		tenant, err := s.store.TenantByID(ctx, *user.TenantID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		out.Tenant = tenant
	}
	return out, nil
}

func tenantIDOf(u *model.User) string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}
