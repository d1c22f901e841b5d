package repository

import (
	"sgad-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComplaintFilter struct {
	CycleID      *uuid.UUID
	EvaluationID *uuid.UUID
	Status       model.ComplaintStatus
	Complainants Scope
}

type ComplaintRepository interface {
	Create(c *model.Complaint) error
	Update(c *model.Complaint) error
	FindByID(id uuid.UUID) (*model.Complaint, error)
	Find(filter ComplaintFilter) ([]model.Complaint, error)
}

type complaintRepo struct {
	db *gorm.DB
}

func NewComplaintRepo(db *gorm.DB) ComplaintRepository {
	return &complaintRepo{db}
}

func (r *complaintRepo) Create(c *model.Complaint) error {
	return r.db.Create(c).Error
}

func (r *complaintRepo) Update(c *model.Complaint) error {
	return r.db.Save(c).Error
}

func (r *complaintRepo) FindByID(id uuid.UUID) (*model.Complaint, error) {
	var c model.Complaint
	if err := r.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepo) Find(filter ComplaintFilter) ([]model.Complaint, error) {
	query := r.db.Model(&model.Complaint{})
	if filter.CycleID != nil {
		query = query.Where("cycle_id = ?", *filter.CycleID)
	}
	if filter.EvaluationID != nil {
		query = query.Where("evaluation_id = ?", *filter.EvaluationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = applyScope(query, "complainant_id", filter.Complainants)

	var out []model.Complaint
	err := query.Order("created_at DESC").Find(&out).Error
	return out, err
}
