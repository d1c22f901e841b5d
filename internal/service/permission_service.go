package service

import (
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"

	"github.com/google/uuid"
)

// PermissionService answers the client's "may I" questions.
type PermissionService interface {
	Modules(actor Actor) []permission.Module
	Check(actor Actor, module, action string, cycleID *uuid.UUID) (*PermissionCheck, error)
}

type PermissionCheck struct {
	Module     string `json:"module"`
	Action     string `json:"action"`
	CycleState string `json:"cycle_state,omitempty"`
	Allowed    bool   `json:"allowed"`
	Locked     bool   `json:"locked"`
}

type permissionService struct {
	cycleRepo repository.CycleRepository
	evaluator *permission.Evaluator
}

func NewPermissionService(cycleRepo repository.CycleRepository, evaluator *permission.Evaluator) PermissionService {
	return &permissionService{cycleRepo: cycleRepo, evaluator: evaluator}
}

func (s *permissionService) Modules(actor Actor) []permission.Module {
	return s.evaluator.AccessibleModules(actor.Role)
}

// Check evaluates an untyped triple. Unknown module or action strings are
// answered as not allowed.
func (s *permissionService) Check(actor Actor, module, action string, cycleID *uuid.UUID) (*PermissionCheck, error) {
	var state permission.CycleState
	if cycleID != nil {
		cycle, err := s.cycleRepo.FindByID(*cycleID)
		if err != nil {
			return nil, notFound("cycle", err)
		}
		state = cycle.State
	}

	res := &PermissionCheck{
		Module:     module,
		Action:     action,
		CycleState: string(state),
		Allowed:    s.evaluator.Check(string(actor.Role), module, action, string(state)),
	}
	m, okM := s.evaluator.Catalog().Parse(module)
	a, okA := permission.ParseAction(action)
	if okM && okA {
		res.Locked = s.evaluator.IsModuleLocked(actor.Role, m, a, state)
	}
	return res, nil
}
