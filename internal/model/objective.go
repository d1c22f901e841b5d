package model

import "github.com/google/uuid"

type ObjectiveKind string

const (
	ObjectiveIndividual ObjectiveKind = "individual"
	ObjectiveEquipa     ObjectiveKind = "equipa"
)

// Objective is a goal contracted with an evaluated worker for a cycle.
type Objective struct {
	BaseModel
	CycleID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"cycle_id" validate:"uuid_required"`
	EvaluatedID uuid.UUID     `gorm:"type:uuid;not null;index" json:"evaluated_id" validate:"uuid_required"`
	Kind        ObjectiveKind `gorm:"type:varchar(20);not null" json:"kind" validate:"required,oneof=individual equipa"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Description string        `gorm:"type:text" json:"description"`
	Indicator   string        `gorm:"type:text" json:"indicator"`
	Target      string        `gorm:"type:varchar(255)" json:"target"`
	Weight      float64       `gorm:"default:0" json:"weight" validate:"gt=0,lte=100"`
	Score       *float64      `json:"score,omitempty" validate:"omitempty,score"`
}

// Competency is a catalog entry of transversal or technical competencies.
type Competency struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Kind        string `gorm:"type:varchar(20);not null" json:"kind"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

var DefaultCompetencies = []Competency{
	{Code: "CT01", Kind: "transversal", Name: "Orientação para resultados"},
	{Code: "CT02", Kind: "transversal", Name: "Orientação para o serviço público"},
	{Code: "CT03", Kind: "transversal", Name: "Trabalho de equipa e cooperação"},
	{Code: "CT04", Kind: "transversal", Name: "Comunicação"},
	{Code: "CT05", Kind: "transversal", Name: "Responsabilidade e compromisso com o serviço"},
	{Code: "CE01", Kind: "tecnica", Name: "Conhecimentos especializados e experiência"},
	{Code: "CE02", Kind: "tecnica", Name: "Planeamento e organização"},
	{Code: "CE03", Kind: "tecnica", Name: "Análise da informação e sentido crítico"},
}
