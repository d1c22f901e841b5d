package repository

import (
	"sgad-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcknowledgementRepository interface {
	Create(ack *model.Acknowledgement, guard CycleGuard) error
	FindByEvaluation(evaluationID uuid.UUID) ([]model.Acknowledgement, error)
}

type acknowledgementRepo struct {
	db *gorm.DB
}

func NewAcknowledgementRepo(db *gorm.DB) AcknowledgementRepository {
	return &acknowledgementRepo{db}
}

func (r *acknowledgementRepo) Create(ack *model.Acknowledgement, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		return tx.Create(ack).Error
	})
}

func (r *acknowledgementRepo) FindByEvaluation(evaluationID uuid.UUID) ([]model.Acknowledgement, error) {
	var acks []model.Acknowledgement
	err := r.db.Where("evaluation_id = ?", evaluationID).Order("acknowledged_at ASC").Find(&acks).Error
	return acks, err
}
