package repository

import (
	"errors"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	FindByCodes(codes []string) ([]model.Permission, error)
	FindAll() ([]model.Permission, error)
	SeedDefaults(catalog *permission.Catalog) error
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

func (r *permissionRepo) FindByCodes(codes []string) ([]model.Permission, error) {
	var perms []model.Permission
	if len(codes) == 0 {
		return perms, nil
	}
	if err := r.db.Where("code IN ?", codes).Order("code ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepo) FindAll() ([]model.Permission, error) {
	var perms []model.Permission
	if err := r.db.Order("code ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// SeedDefaults inserts every catalog module/action pair that is missing.
func (r *permissionRepo) SeedDefaults(catalog *permission.Catalog) error {
	for _, p := range model.DefaultPermissions(catalog) {
		var existing model.Permission
		err := r.db.Where("code = ?", p.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&p).Error; err != nil {
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
