package model

import (
	"fmt"
	"time"
)

// TenantStatus is the lifecycle state of a tenant account.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantTrial     TenantStatus = "trial"
)

// ParseTenantStatus validates a raw status value against the closed set.
func ParseTenantStatus(s string) (TenantStatus, error) {
	switch TenantStatus(s) {
	case TenantActive, TenantSuspended, TenantTrial:
		return TenantStatus(s), nil
	}
	return "", fmt.Errorf("unknown tenant status %q", s)
}

// Plan is a tenant's subscription plan. The plan determines the quota
// ceilings stored on the tenant row.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// ParsePlan validates a raw plan value against the closed set.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanFree, PlanPro, PlanEnterprise:
		return Plan(s), nil
	}
	return "", fmt.Errorf("unknown subscription plan %q", s)
}

// PlanLimits returns the user and project ceilings for a plan.
func PlanLimits(p Plan) (maxUsers, maxProjects int) {
	switch p {
	case PlanPro:
		return 25, 15
	case PlanEnterprise:
		return 100, 50
	default:
		return 5, 3
	}
}

// Tenant represents an isolated customer organization. It is the unit of
// quota and access scoping for everything below it.
type Tenant struct {
	ID               string       `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string       `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain        string       `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Status           TenantStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	SubscriptionPlan Plan         `json:"subscription_plan" gorm:"type:varchar(20);not null;default:'free'"`
	MaxUsers         int          `json:"max_users" gorm:"not null;default:5"`
	MaxProjects      int          `json:"max_projects" gorm:"not null;default:3"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
