package repository

import (
	"sgad-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ObjectiveRepository interface {
	Create(obj *model.Objective, guard CycleGuard) error
	Update(obj *model.Objective, guard CycleGuard) error
	Delete(id uuid.UUID, deletedBy string, guard CycleGuard) error
	FindByID(id uuid.UUID) (*model.Objective, error)
	FindByCycle(cycleID uuid.UUID, scope Scope) ([]model.Objective, error)
}

type objectiveRepo struct {
	db *gorm.DB
}

func NewObjectiveRepo(db *gorm.DB) ObjectiveRepository {
	return &objectiveRepo{db}
}

func (r *objectiveRepo) Create(obj *model.Objective, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		return tx.Create(obj).Error
	})
}

func (r *objectiveRepo) Update(obj *model.Objective, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		return tx.Save(obj).Error
	})
}

func (r *objectiveRepo) Delete(id uuid.UUID, deletedBy string, guard CycleGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := guard.hold(tx); err != nil {
			return err
		}
		if err := tx.Model(&model.Objective{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Objective{}, "id = ?", id).Error
	})
}

func (r *objectiveRepo) FindByID(id uuid.UUID) (*model.Objective, error) {
	var obj model.Objective
	if err := r.db.First(&obj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

func (r *objectiveRepo) FindByCycle(cycleID uuid.UUID, scope Scope) ([]model.Objective, error) {
	var objs []model.Objective
	query := applyScope(r.db.Where("cycle_id = ?", cycleID), "evaluated_id", scope)
	err := query.Order("evaluated_id ASC, kind ASC, created_at ASC").Find(&objs).Error
	return objs, err
}
