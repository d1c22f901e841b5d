package model

import (
	"time"

	"sgad-api/internal/permission"

	"github.com/google/uuid"
)

// Cycle is an evaluation period (ciclos_avaliacao).
type Cycle struct {
	BaseModel
	Name          string                `gorm:"type:varchar(150);not null" json:"name" validate:"required"`
	Year          int                   `gorm:"not null;index" json:"year" validate:"required,gte=2000,lte=2100"`
	Period        string                `gorm:"type:varchar(20)" json:"period" validate:"omitempty,oneof=anual semestral_1 semestral_2"`
	StartDate     time.Time             `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time             `gorm:"type:date;not null" json:"end_date"`
	State         permission.CycleState `gorm:"type:varchar(30);not null;index" json:"state"`
	Scheme        string                `gorm:"type:varchar(50)" json:"scheme"`
	HomologatedAt *time.Time            `json:"homologated_at,omitempty"`
	HomologatedBy *uuid.UUID            `gorm:"type:uuid" json:"homologated_by,omitempty"`
}

func (Cycle) TableName() string {
	return "ciclos_avaliacao"
}

// CycleTransition records every state change of a cycle.
type CycleTransition struct {
	BaseModel
	CycleID uuid.UUID             `gorm:"type:uuid;not null;index" json:"cycle_id"`
	From    permission.CycleState `gorm:"type:varchar(30)" json:"from"`
	To      permission.CycleState `gorm:"type:varchar(30)" json:"to"`
	Note    string                `gorm:"type:text" json:"note,omitempty"`
}
