package repository

import (
	"errors"

	"sgad-api/internal/model"

	"gorm.io/gorm"
)

type CompetencyRepository interface {
	FindAll() ([]model.Competency, error)
	SeedDefaults() error
}

type competencyRepo struct {
	db *gorm.DB
}

func NewCompetencyRepo(db *gorm.DB) CompetencyRepository {
	return &competencyRepo{db}
}

func (r *competencyRepo) FindAll() ([]model.Competency, error) {
	var out []model.Competency
	err := r.db.Order("code ASC").Find(&out).Error
	return out, err
}

func (r *competencyRepo) SeedDefaults() error {
	for _, c := range model.DefaultCompetencies {
		var existing model.Competency
		err := r.db.Where("code = ?", c.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&c).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
