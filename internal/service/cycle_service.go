package service

import (
	"errors"
	"fmt"
	"time"

	"sgad-api/internal/audit"
	"sgad-api/internal/config"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/pkg/validator"

	"github.com/google/uuid"
)

type CycleService interface {
	List(actor Actor) ([]model.Cycle, error)
	Get(actor Actor, id uuid.UUID) (*model.Cycle, error)
	Create(actor Actor, req *CycleRequest) (*model.Cycle, error)
	Update(actor Actor, id uuid.UUID, req *CycleRequest) (*model.Cycle, error)
	Delete(actor Actor, id uuid.UUID) error
	// Transition advances the cycle by exactly one state. Moving to
	// homologado is homologation and requires a role that can homologate.
	Transition(actor Actor, id uuid.UUID, to, note string) (*model.Cycle, error)
	History(actor Actor, id uuid.UUID) ([]model.CycleTransition, error)
}

type CycleRequest struct {
	Name      string `json:"name" validate:"required"`
	Year      int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Period    string `json:"period" validate:"omitempty,oneof=anual semestral_1 semestral_2"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Scheme    string `json:"scheme"`
}

type cycleService struct {
	cycleRepo repository.CycleRepository
	evaluator *permission.Evaluator
	guard     guard
	scoring   *config.ScoringConfig
	events    EventPublisher
	audit     *audit.Logger
}

func NewCycleService(cycleRepo repository.CycleRepository, evaluator *permission.Evaluator, scoring *config.ScoringConfig, events EventPublisher, auditLog *audit.Logger) CycleService {
	return &cycleService{
		cycleRepo: cycleRepo,
		evaluator: evaluator,
		guard:     guard{evaluator},
		scoring:   scoring,
		events:    publisherOrNop(events),
		audit:     auditLog,
	}
}

func (s *cycleService) record(actor Actor, module permission.ModuleCode, action permission.Action, cycle *model.Cycle, details map[string]interface{}) {
	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     module,
		Action:     string(action),
		EntityType: "cycle",
		EntityID:   cycle.ID.String(),
		Details:    details,
	})
}

// cycleBoundModules read cycles to work; any of them grants cycle lookup.
var cycleBoundModules = []permission.ModuleCode{
	permission.ModuleCycles,
	permission.ModuleObjectives,
	permission.ModuleSelfEvaluation,
	permission.ModuleSuperiorEval,
	permission.ModulePeerEvaluation,
	permission.ModuleUtenteEval,
	permission.ModuleAcknowledgement,
	permission.ModuleComplaints,
	permission.ModuleHomologation,
	permission.ModuleReports,
}

func (s *cycleService) canRead(role permission.Role) bool {
	for _, m := range cycleBoundModules {
		if s.evaluator.HasModuleAccess(role, m) {
			return true
		}
	}
	return false
}

func (s *cycleService) List(actor Actor) ([]model.Cycle, error) {
	if !s.canRead(actor.Role) {
		return nil, ErrForbidden
	}
	return s.cycleRepo.FindAll()
}

func (s *cycleService) Get(actor Actor, id uuid.UUID) (*model.Cycle, error) {
	if !s.canRead(actor.Role) {
		return nil, ErrForbidden
	}
	cycle, err := s.cycleRepo.FindByID(id)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	return cycle, nil
}

func (s *cycleService) fill(cycle *model.Cycle, req *CycleRequest) error {
	if err := validator.FirstError(req); err != nil {
		return validationError(err)
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return validationError(errors.New("end_date is before start_date"))
	}
	scheme, ok := s.scoring.Scheme(req.Scheme)
	if !ok {
		return validationError(fmt.Errorf("unknown scheme %q", req.Scheme))
	}

	cycle.Name = req.Name
	cycle.Year = req.Year
	cycle.Period = req.Period
	cycle.StartDate = start
	cycle.EndDate = end
	cycle.Scheme = scheme.Name
	return nil
}

func (s *cycleService) Create(actor Actor, req *CycleRequest) (*model.Cycle, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleCycles, permission.ActionCreate); err != nil {
		return nil, err
	}
	cycle := &model.Cycle{State: permission.CycleAberto}
	if err := s.fill(cycle, req); err != nil {
		return nil, err
	}
	cycle.Stamp(actor.ID())

	if err := s.cycleRepo.Create(cycle); err != nil {
		return nil, err
	}
	s.record(actor, permission.ModuleCycles, permission.ActionCreate, cycle, map[string]interface{}{"name": cycle.Name})
	return cycle, nil
}

func (s *cycleService) Update(actor Actor, id uuid.UUID, req *CycleRequest) (*model.Cycle, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleCycles, permission.ActionUpdate); err != nil {
		return nil, err
	}
	cycle, err := s.cycleRepo.FindByID(id)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	if cycle.State == permission.CycleHomologado {
		return nil, ErrCycleLocked
	}
	// stored NAFs were computed under the current scheme
	if scheme, ok := s.scoring.Scheme(req.Scheme); ok && scheme.Name != cycle.Scheme && cycle.State != permission.CycleAberto {
		return nil, fmt.Errorf("%w: the weighting scheme can only change while the cycle is open", ErrCycleLocked)
	}
	if err := s.fill(cycle, req); err != nil {
		return nil, err
	}
	cycle.UpdatedBy = actor.ID()

	if err := s.cycleRepo.Update(cycle); err != nil {
		return nil, err
	}
	s.record(actor, permission.ModuleCycles, permission.ActionUpdate, cycle, nil)
	return cycle, nil
}

func (s *cycleService) Delete(actor Actor, id uuid.UUID) error {
	if err := s.guard.allow(actor.Role, permission.ModuleCycles, permission.ActionDelete); err != nil {
		return err
	}
	cycle, err := s.cycleRepo.FindByID(id)
	if err != nil {
		return notFound("cycle", err)
	}
	if cycle.State != permission.CycleAberto {
		return fmt.Errorf("%w: only open cycles can be deleted", ErrConflict)
	}
	if err := s.cycleRepo.Delete(id, actor.ID()); err != nil {
		return err
	}
	s.record(actor, permission.ModuleCycles, permission.ActionDelete, cycle, nil)
	return nil
}

func (s *cycleService) Transition(actor Actor, id uuid.UUID, to, note string) (*model.Cycle, error) {
	target, ok := permission.ParseCycleState(to)
	if !ok || target == permission.CycleNone {
		return nil, validationError(fmt.Errorf("unknown cycle state %q", to))
	}

	module := permission.ModuleCycles
	if target == permission.CycleHomologado {
		module = permission.ModuleHomologation
		if !s.evaluator.CanHomologate(actor.Role) {
			return nil, ErrForbidden
		}
	} else if err := s.guard.allow(actor.Role, permission.ModuleCycles, permission.ActionUpdate); err != nil {
		return nil, err
	}

	cycle, err := s.cycleRepo.FindByID(id)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	from := cycle.State
	if err := permission.ValidateTransition(from, target); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	updated, err := s.cycleRepo.Transition(id, from, target, actor.ID(), note)
	if err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	s.record(actor, module, permission.ActionUpdate, updated, map[string]interface{}{
		"from": from, "to": target, "note": note,
	})
	s.events.Publish("cycle_state_changed", fmt.Sprintf("%s: %s -> %s", updated.Name, from, target), map[string]interface{}{
		"cycle_id": updated.ID,
		"from":     from,
		"to":       target,
	})
	return updated, nil
}

func (s *cycleService) History(actor Actor, id uuid.UUID) ([]model.CycleTransition, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleCycles, permission.ActionView); err != nil {
		return nil, err
	}
	return s.cycleRepo.Transitions(id)
}
