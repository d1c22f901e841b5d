package model

import (
	"time"

	"sgad-api/internal/permission"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
)

type EvaluationType string

const (
	EvaluationAuto     EvaluationType = "auto"
	EvaluationSuperior EvaluationType = "superior"
	EvaluationPares    EvaluationType = "pares"
	EvaluationUtente   EvaluationType = "utente"
)

// Module maps an evaluation type to the module that gates it.
func (t EvaluationType) Module() (permission.ModuleCode, bool) {
	switch t {
	case EvaluationAuto:
		return permission.ModuleSelfEvaluation, true
	case EvaluationSuperior:
		return permission.ModuleSuperiorEval, true
	case EvaluationPares:
		return permission.ModulePeerEvaluation, true
	case EvaluationUtente:
		return permission.ModuleUtenteEval, true
	}
	return "", false
}

// Evaluation holds the sub-scores of one evaluation of a worker in a cycle.
// NAF and Grade are set only once every weighted sub-score is present.
type Evaluation struct {
	BaseModel
	CycleID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"cycle_id"`
	EvaluatedID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"evaluated_id"`
	EvaluatorID  *uuid.UUID     `gorm:"type:uuid;index" json:"evaluator_id,omitempty"`
	Type         EvaluationType `gorm:"type:varchar(20);not null;index" json:"type"`
	Anonymous    bool           `gorm:"default:false" json:"anonymous"`
	Individual   *float64       `json:"individual,omitempty"`
	Equipa       *float64       `json:"equipa,omitempty"`
	Transversais *float64       `json:"transversais,omitempty"`
	Tecnicas     *float64       `json:"tecnicas,omitempty"`
	Comments     string         `gorm:"type:text" json:"comments,omitempty"`
	Scheme       string         `gorm:"type:varchar(50)" json:"scheme,omitempty"`
	NAF          *float64       `json:"naf,omitempty"`
	Grade        scoring.Grade  `gorm:"type:varchar(20)" json:"grade,omitempty"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
}

// SubScores returns the components that have been filled in.
func (e *Evaluation) SubScores() scoring.SubScores {
	s := scoring.SubScores{}
	set := func(c scoring.Component, v *float64) {
		if v != nil {
			s[c] = *v
		}
	}
	set(scoring.ObjetivosIndividuais, e.Individual)
	set(scoring.ObjetivosEquipa, e.Equipa)
	set(scoring.CompetenciasTransversais, e.Transversais)
	set(scoring.CompetenciasTecnicas, e.Tecnicas)
	return s
}

// Acknowledgement is the evaluated worker's tomada de conhecimento.
type Acknowledgement struct {
	BaseModel
	EvaluationID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ack_eval_user" json:"evaluation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ack_eval_user" json:"user_id"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	Comment        string    `gorm:"type:text" json:"comment,omitempty"`
}
