package repository

import (
	"sgad-api/internal/model"

	"gorm.io/gorm"
)

type AuditFilter struct {
	UserID   string
	Module   string
	EntityID string
	Limit    int
	Offset   int
}

type AuditRepository interface {
	Create(entry *model.AuditLog) error
	Find(filter AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepo) Find(filter AuditFilter) ([]model.AuditLog, int64, error) {
	query := r.db.Model(&model.AuditLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []model.AuditLog
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&entries).Error
	return entries, total, err
}
