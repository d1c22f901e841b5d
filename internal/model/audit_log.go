package model

import "time"

// AuditLog is an append-only record of a permission-gated mutation.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);index" json:"user_id"`
	Role       string    `gorm:"type:varchar(50)" json:"role"`
	Module     string    `gorm:"type:varchar(10);index" json:"module"`
	Action     string    `gorm:"type:varchar(20)" json:"action"`
	EntityType string    `gorm:"type:varchar(50)" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(64);index" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
