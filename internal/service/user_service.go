package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/apperr"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/audit"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/authz"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/lifecycle"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/model"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/quota"
	"github.com/mahi63-hub/Multi-Tenant-SaaS-Platform/internal/store"
)

// UserService owns user management inside a tenant.
type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create adds a user to a tenant. The quota reservation, the insert and
// the audit record are one transaction.
func (s *UserService) Create(ctx context.Context, actor authz.Actor, tenantID string, req CreateUserRequest, ip string) (*model.User, error) {
	if req.Email == "" || req.FullName == "" || req.Password == "" {
		return nil, apperr.Validation("email, full name, and password are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	role := model.RoleUser
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		role = parsed
	}

	if d := authz.Authorize(actor, authz.UserCreate, authz.Target{TenantID: tenantID}); !d.Allowed {
		return nil, apperr.Forbidden("%s", d.Reason)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &model.User{
		ID:           uuid.NewString(),
		TenantID:     &tenantID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}

	err = s.store.Tx(ctx, func(tx store.Store) error {
		if err := quota.Reserve(ctx, tx, tenantID, quota.KindUser); err != nil {
			return err
		}
		if _, err := tx.UserByEmailInTenant(ctx, req.Email, tenantID); err == nil {
			return apperr.Conflict("user with this email already exists in this tenant")
		} else if !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal(err)
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("user with this email already exists in this tenant")
			}
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     actor.UserID,
			Action:     audit.ActionCreateUser,
			EntityType: "user",
			EntityID:   user.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type ListUsersRequest struct {
	Role  string
	Page  int
	Limit int
}

// List returns a tenant's users for its admins.
func (s *UserService) List(ctx context.Context, actor authz.Actor, tenantID string, req ListUsersRequest) ([]model.User, int64, error) {
	if d := authz.Authorize(actor, authz.UserList, authz.Target{TenantID: tenantID}); !d.Allowed {
		return nil, 0, apperr.Forbidden("%s", d.Reason)
	}
	if req.Role != "" {
		if _, err := model.ParseRole(req.Role); err != nil {
			return nil, 0, apperr.Validation("%v", err)
		}
	}
	users, total, err := s.store.ListUsers(ctx, store.UserFilter{
		TenantID: tenantID,
		Role:     req.Role,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

// Directory returns a page of the actor's own tenant members along with
// the member total; any role may call it.
func (s *UserService) Directory(ctx context.Context, actor authz.Actor, page, limit int) ([]model.User, int64, error) {
	if d := authz.Authorize(actor, authz.UserRead, authz.Target{TenantID: actor.TenantID}); !d.Allowed {
		return nil, 0, apperr.Forbidden("%s", d.Reason)
	}
	users, total, err := s.store.ListUsers(ctx, store.UserFilter{
		TenantID: actor.TenantID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Update changes a user's details. Demoting or deactivating a tenant's
// last active admin is denied inside the transaction, against fresh state.
func (s *UserService) Update(ctx context.Context, actor authz.Actor, userID string, req UpdateUserRequest, ip string) (*model.User, error) {
	var role model.Role
	if req.Role != nil {
		parsed, err := model.ParseRole(*req.Role)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		role = parsed
	}

	current, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	roleChange := req.Role != nil && role != current.Role
	target := authz.Target{TenantID: tenantIDOf(current), UserID: current.ID, RoleChange: roleChange}
	if d := authz.Authorize(actor, authz.UserUpdate, target); !d.Allowed {
		return nil, apperr.Forbidden("%s", d.Reason)
	}

	var user *model.User
	err = s.store.Tx(ctx, func(tx store.Store) error {
		var err error
		user, err = tx.UserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("user not found")
			}
			return apperr.Internal(err)
		}

		demoted := req.Role != nil && role != model.RoleTenantAdmin && user.Role == model.RoleTenantAdmin
		deactivated := req.IsActive != nil && !*req.IsActive && user.IsActive
		if user.Role == model.RoleTenantAdmin && (demoted || deactivated) {
			if err := lifecycle.EnsureAdminRemains(ctx, tx, user); err != nil {
				return err
			}
		}

		if req.FullName != nil && *req.FullName != "" {
			user.FullName = *req.FullName
		}
		if req.Role != nil {
			user.Role = role
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if err := tx.UpdateUser(ctx, user); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantIDOf(user),
			UserID:     actor.UserID,
			Action:     audit.ActionUpdateUser,
			EntityType: "user",
			EntityID:   user.ID,
			IP:         ip,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. The last active admin of a tenant can never be
// deleted.
func (s *UserService) Delete(ctx context.Context, actor authz.Actor, userID string, ip string) error {
	current, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	target := authz.Target{TenantID: tenantIDOf(current), UserID: current.ID}
	if d := authz.Authorize(actor, authz.UserDelete, target); !d.Allowed {
		return apperr.Forbidden("%s", d.Reason)
	}

	return s.store.Tx(ctx, func(tx store.Store) error {
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("user not found")
			}
			return apperr.Internal(err)
		}
		if err := lifecycle.EnsureAdminRemains(ctx, tx, user); err != nil {
			return err
		}
		if err := tx.DeleteUser(ctx, userID); err != nil {
			return apperr.Internal(err)
		}
		return audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantIDOf(user),
			UserID:     actor.UserID,
			Action:     audit.ActionDeleteUser,
			EntityType: "user",
			EntityID:   user.ID,
			IP:         ip,
		})
	})
}
