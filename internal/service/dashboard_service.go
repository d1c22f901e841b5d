package service

import (
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetDashboardStats(actor Actor, cycleID *uuid.UUID) (*DashboardStats, error)
}

type DashboardStats struct {
	CyclesByState     map[permission.CycleState]int64 `json:"cycles_by_state"`
	GradeDistribution map[scoring.Grade]int64         `json:"grade_distribution,omitempty"`
	Modules           []permission.Module             `json:"modules"`
}

type dashboardService struct {
	cycleRepo      repository.CycleRepository
	evaluationRepo repository.EvaluationRepository
	evaluator      *permission.Evaluator
	guard          guard
}

func NewDashboardService(cycleRepo repository.CycleRepository, evaluationRepo repository.EvaluationRepository, evaluator *permission.Evaluator) DashboardService {
	return &dashboardService{
		cycleRepo:      cycleRepo,
		evaluationRepo: evaluationRepo,
		evaluator:      evaluator,
		guard:          guard{evaluator},
	}
}

// GetDashboardStats counts cycles per state and, for a given cycle, the
// grades of superior evaluations. The distribution is shown only to roles
// that can read reports.
func (s *dashboardService) GetDashboardStats(actor Actor, cycleID *uuid.UUID) (*DashboardStats, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleDashboard, permission.ActionView); err != nil {
		return nil, err
	}
	counts, err := s.cycleRepo.CountByState()
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{
		CyclesByState: counts,
		Modules:       s.evaluator.AccessibleModules(actor.Role),
	}

	if cycleID != nil && s.evaluator.HasPermission(actor.Role, permission.ModuleReports, permission.ActionView) {
		dist, err := s.evaluationRepo.GradeDistribution(*cycleID)
		if err != nil {
			return nil, err
		}
		stats.GradeDistribution = make(map[scoring.Grade]int64, len(scoring.Grades()))
		for _, g := range scoring.Grades() {
			stats.GradeDistribution[g] = dist[g]
		}
	}
	return stats, nil
}
