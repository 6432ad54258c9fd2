package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project. Any direct transition
// between states is allowed; unknown values are rejected at the boundary.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

// ParseProjectStatus validates a raw status value against the closed set.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectArchived, ProjectCompleted:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// Project represents a project owned by a tenant. Projects count against
// the tenant's max_projects quota.
type Project struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    string         `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      ProjectStatus  `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedBy   string         `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
