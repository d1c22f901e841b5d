package service

import (
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
)

type CompetencyService interface {
	List(actor Actor) ([]model.Competency, error)
}

type competencyService struct {
	competencyRepo repository.CompetencyRepository
	guard          guard
}

func NewCompetencyService(competencyRepo repository.CompetencyRepository, evaluator *permission.Evaluator) CompetencyService {
	return &competencyService{competencyRepo: competencyRepo, guard: guard{evaluator}}
}

func (s *competencyService) List(actor Actor) ([]model.Competency, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleCompetencies, permission.ActionView); err != nil {
		return nil, err
	}
	return s.competencyRepo.FindAll()
}
