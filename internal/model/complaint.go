package model

import (
	"time"

	"github.com/google/uuid"
)

type ComplaintKind string

const (
	ComplaintReclamacao ComplaintKind = "reclamacao"
	ComplaintRecurso    ComplaintKind = "recurso"
)

type ComplaintStatus string

const (
	ComplaintPendente   ComplaintStatus = "pendente"
	ComplaintDeferida   ComplaintStatus = "deferida"
	ComplaintIndeferida ComplaintStatus = "indeferida"
)

// Complaint is a reclamação or recurso lodged against an evaluation.
type Complaint struct {
	BaseModel
	EvaluationID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"evaluation_id"`
	CycleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"cycle_id"`
	ComplainantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"complainant_id"`
	Kind          ComplaintKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Body          string          `gorm:"type:text;not null" json:"body"`
	Status        ComplaintStatus `gorm:"type:varchar(20);not null;default:'pendente'" json:"status"`
	Response      string          `gorm:"type:text" json:"response,omitempty"`
	RespondedBy   *uuid.UUID      `gorm:"type:uuid" json:"responded_by,omitempty"`
	RespondedAt   *time.Time      `json:"responded_at,omitempty"`
}
