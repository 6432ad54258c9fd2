package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role is a user's place in the three-tier hierarchy.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a member of a tenant. TenantID is nil only for
// super_admin accounts, which exist outside any tenant. The (email,
// tenant_id) pair is unique.
type User struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     *string        `json:"tenant_id" gorm:"type:uuid;index;uniqueIndex:idx_users_email_tenant"`
	Email        string         `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_email_tenant"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	FullName     string         `json:"full_name" gorm:"type:varchar(100);not null"`
	Role         Role           `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// InTenant reports whether the user belongs to the given tenant.
func (u *User) InTenant(tenantID string) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}
