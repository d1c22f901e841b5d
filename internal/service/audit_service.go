package service

import (
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
)

type AuditService interface {
	List(actor Actor, filter repository.AuditFilter) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	guard     guard
}

func NewAuditService(auditRepo repository.AuditRepository, evaluator *permission.Evaluator) AuditService {
	return &auditService{auditRepo: auditRepo, guard: guard{evaluator}}
}

func (s *auditService) List(actor Actor, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleAudit, permission.ActionView); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.Find(filter)
}
