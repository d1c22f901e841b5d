package repository

import (
	"sgad-api/internal/model"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationFilter struct {
	CycleID     *uuid.UUID
	Type        model.EvaluationType
	EvaluatorID *uuid.UUID
	Evaluated   Scope
}

type EvaluationRepository interface {
	Create(ev *model.Evaluation, guard CycleGuard) error
	Update(ev *model.Evaluation, guard CycleGuard) error
	Delete(id uuid.UUID, deletedBy string, guard CycleGuard) error
	FindByID(id uuid.UUID) (*model.Evaluation, error)
	Find(filter EvaluationFilter) ([]model.Evaluation, error)
	GradeDistribution(cycleID uuid.UUID) (map[scoring.Grade]int64, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db}
}

func (r *evaluationRepo) Create(ev *model.Evaluation, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		return tx.Create(ev).Error
	})
}

func (r *evaluationRepo) Update(ev *model.Evaluation, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		return tx.Save(ev).Error
	})
}

func (r *evaluationRepo) Delete(id uuid.UUID, deletedBy string, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		if err := tx.Model(&model.Evaluation{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Evaluation{}, "id = ?", id).Error
	})
}

func (r *evaluationRepo) FindByID(id uuid.UUID) (*model.Evaluation, error) {
	var ev model.Evaluation
	if err := r.db.First(&ev, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evaluationRepo) Find(filter EvaluationFilter) ([]model.Evaluation, error) {
	query := r.db.Model(&model.Evaluation{})
	if filter.CycleID != nil {
		query = query.Where("cycle_id = ?", *filter.CycleID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.EvaluatorID != nil {
		query = query.Where("evaluator_id = ?", *filter.EvaluatorID)
	}
	query = applyScope(query, "evaluated_id", filter.Evaluated)

	var evs []model.Evaluation
	err := query.Order("created_at DESC").Find(&evs).Error
	return evs, err
}

// GradeDistribution counts superior evaluations with a grade per mention.
func (r *evaluationRepo) GradeDistribution(cycleID uuid.UUID) (map[scoring.Grade]int64, error) {
	rows, err := r.db.Model(&model.Evaluation{}).
		Select("grade, COUNT(*) as total").
		Where("cycle_id = ? AND type = ? AND grade <> ''", cycleID, model.EvaluationSuperior).
		Group("grade").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[scoring.Grade]int64)
	for rows.Next() {
		var grade string
		var total int64
		if err := rows.Scan(&grade, &total); err != nil {
			return nil, err
		}
		dist[scoring.Grade(grade)] = total
	}
	return dist, rows.Err()
}
