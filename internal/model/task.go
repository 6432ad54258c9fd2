package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the workflow state of a task. All six directed transitions
// between the three states are permitted; completed tasks may be reopened.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// ParseTaskStatus validates a raw status value against the closed set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// TaskPriority is the priority bucket of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ParseTaskPriority validates a raw priority value against the closed set.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// Task represents a unit of work inside a project. TenantID is a
// denormalized copy of the project's tenant so tenant scoping never needs
// a join. AssignedTo, when set, must reference a user in the same tenant.
type Task struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   string         `json:"project_id" gorm:"type:uuid;index;not null"`
	TenantID    string         `json:"tenant_id" gorm:"type:uuid;index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      TaskStatus     `json:"status" gorm:"type:varchar(20);not null;default:'todo'"`
	Priority    TaskPriority   `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	AssignedTo  *string        `json:"assigned_to" gorm:"type:uuid;index"`
	DueDate     *time.Time     `json:"due_date" gorm:"type:date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
