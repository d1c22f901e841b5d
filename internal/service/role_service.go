package service

import (
	"fmt"

	"sgad-api/internal/logging"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
)

type RoleService interface {
	GetAllRoles(actor Actor) ([]model.Role, error)
	GetAllPermissions(actor Actor) ([]model.Permission, error)
	// SyncDefaults seeds roles and permissions and rewrites role_permissions
	// from the in-memory permission table.
	SyncDefaults() error
}

type roleService struct {
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
	evaluator      *permission.Evaluator
	guard          guard
}

func NewRoleService(roleRepo repository.RoleRepository, permissionRepo repository.PermissionRepository, evaluator *permission.Evaluator) RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		evaluator:      evaluator,
		guard:          guard{evaluator},
	}
}

func (s *roleService) GetAllRoles(actor Actor) ([]model.Role, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleRoles, permission.ActionView); err != nil {
		return nil, err
	}
	return s.roleRepo.FindAll()
}

func (s *roleService) GetAllPermissions(actor Actor) ([]model.Permission, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleRoles, permission.ActionView); err != nil {
		return nil, err
	}
	return s.permissionRepo.FindAll()
}

func (s *roleService) SyncDefaults() error {
	if err := s.permissionRepo.SeedDefaults(s.evaluator.Catalog()); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := s.roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	for _, r := range permission.AllRoles {
		role, err := s.roleRepo.FindByCode(string(r))
		if err != nil {
			return fmt.Errorf("role %s: %w", r, err)
		}
		perms, err := s.permissionRepo.FindByCodes(s.evaluator.Table().PermissionCodes(r))
		if err != nil {
			return fmt.Errorf("permissions of %s: %w", r, err)
		}
		if err := s.roleRepo.ReplacePermissions(role, perms); err != nil {
			return fmt.Errorf("role_permissions of %s: %w", r, err)
		}
		logging.Debug("role permissions synced", "role", r, "count", len(perms))
	}
	return nil
}
