package model

import "time"

// AuditLog is an append-only record of a state change: who did what to
// which entity. Rows are written inside the same transaction as the
// mutation they describe and are never updated or deleted.
type AuditLog struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   *string   `json:"tenant_id" gorm:"type:uuid;index"`
	UserID     *string   `json:"user_id" gorm:"type:uuid;index"`
	Action     string    `json:"action" gorm:"type:varchar(50);not null"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID   string    `json:"entity_id" gorm:"type:varchar(64)"`
	IPAddress  string    `json:"ip_address" gorm:"type:varchar(45)"`
	CreatedAt  time.Time `json:"created_at"`
}
