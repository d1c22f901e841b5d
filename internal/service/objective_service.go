package service

import (
	"fmt"

	"sgad-api/internal/audit"
	"sgad-api/internal/config"
	"sgad-api/internal/logging"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/scoring"
	"sgad-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ObjectiveService interface {
	List(actor Actor, cycleID uuid.UUID) ([]model.Objective, error)
	Create(actor Actor, req *ObjectiveRequest) (*model.Objective, error)
	Update(actor Actor, id uuid.UUID, req *ObjectiveRequest) (*model.Objective, error)
	Delete(actor Actor, id uuid.UUID) error
}

type ObjectiveRequest struct {
	CycleID     uuid.UUID           `json:"cycle_id" validate:"uuid_required"`
	EvaluatedID uuid.UUID           `json:"evaluated_id" validate:"uuid_required"`
	Kind        model.ObjectiveKind `json:"kind" validate:"required,oneof=individual equipa"`
	Title       string              `json:"title" validate:"required,max=255"`
	Description string              `json:"description"`
	Indicator   string              `json:"indicator"`
	Target      string              `json:"target"`
	Weight      float64             `json:"weight" validate:"gt=0,lte=100"`
	Score       *float64            `json:"score" validate:"omitempty,score"`
}

type objectiveService struct {
	objectiveRepo  repository.ObjectiveRepository
	cycleRepo      repository.CycleRepository
	evaluationRepo repository.EvaluationRepository
	guard          guard
	scopes         scopeResolver
	scoring        *config.ScoringConfig
	audit          *audit.Logger
}

func NewObjectiveService(
	objectiveRepo repository.ObjectiveRepository,
	cycleRepo repository.CycleRepository,
	evaluationRepo repository.EvaluationRepository,
	userRepo repository.UserRepository,
	evaluator *permission.Evaluator,
	scoringCfg *config.ScoringConfig,
	auditLog *audit.Logger,
) ObjectiveService {
	return &objectiveService{
		objectiveRepo:  objectiveRepo,
		cycleRepo:      cycleRepo,
		evaluationRepo: evaluationRepo,
		guard:          guard{evaluator},
		scopes:         scopeResolver{ev: evaluator, users: userRepo},
		scoring:        scoringCfg,
		audit:          auditLog,
	}
}

// authorize loads the cycle, checks the grant against its state and that
// the evaluated worker is inside the actor's scope.
func (s *objectiveService) authorize(actor Actor, action permission.Action, cycleID, evaluatedID uuid.UUID) (*model.Cycle, error) {
	cycle, err := s.cycleRepo.FindByID(cycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	if err := s.guard.allowInCycle(actor.Role, permission.ModuleObjectives, action, cycle.State); err != nil {
		return nil, err
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(evaluatedID) {
		return nil, ErrForbidden
	}
	return cycle, nil
}

var fullWeight = decimal.NewFromInt(100)

// checkWeights keeps the weights of a worker's objectives of one kind at or
// below 100%. A kind only yields a sub-score once they reach exactly 100.
func (s *objectiveService) checkWeights(obj *model.Objective) error {
	existing, err := s.objectiveRepo.FindByCycle(obj.CycleID, repository.Only(obj.EvaluatedID))
	if err != nil {
		return err
	}
	items := []scoring.WeightedItem{{Weight: obj.Weight}}
	for _, o := range existing {
		if o.ID == obj.ID || o.Kind != obj.Kind {
			continue
		}
		items = append(items, scoring.WeightedItem{Weight: o.Weight})
	}
	if total := scoring.TotalWeight(items); total.GreaterThan(fullWeight) {
		return validationError(fmt.Errorf("%s objective weights would total %s%%", obj.Kind, total.String()))
	}
	return nil
}

// rescore refreshes the superior evaluations of the worker, whose objective
// sub-scores derive from the objectives just changed. Failures are logged;
// the objective write already succeeded.
func (s *objectiveService) rescore(actor Actor, action permission.Action, cycle *model.Cycle, evaluatedID uuid.UUID) {
	evs, err := s.evaluationRepo.Find(repository.EvaluationFilter{
		CycleID:   &cycle.ID,
		Type:      model.EvaluationSuperior,
		Evaluated: repository.Only(evaluatedID),
	})
	if err != nil || len(evs) == 0 {
		if err != nil {
			logging.Error("rescore: load evaluations failed", "cycle_id", cycle.ID, "evaluated_id", evaluatedID, "error", err)
		}
		return
	}
	objectives, err := s.objectiveRepo.FindByCycle(cycle.ID, repository.Only(evaluatedID))
	if err != nil {
		logging.Error("rescore: load objectives failed", "cycle_id", cycle.ID, "evaluated_id", evaluatedID, "error", err)
		return
	}
	lock := s.guard.lockedIn(actor.Role, permission.ModuleObjectives, action, cycle.ID)
	for i := range evs {
		ev := &evs[i]
		if err := scoreEvaluation(ev, cycle, objectives, s.scoring); err != nil {
			logging.Error("rescore failed", "evaluation_id", ev.ID, "error", err)
			continue
		}
		ev.UpdatedBy = actor.ID()
		if err := s.evaluationRepo.Update(ev, lock); err != nil {
			logging.Error("rescore: save failed", "evaluation_id", ev.ID, "error", err)
		}
	}
}

func (s *objectiveService) record(actor Actor, action permission.Action, obj *model.Objective) {
	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     permission.ModuleObjectives,
		Action:     string(action),
		EntityType: "objective",
		EntityID:   obj.ID.String(),
		Details:    map[string]interface{}{"cycle_id": obj.CycleID, "evaluated_id": obj.EvaluatedID},
	})
}

func (s *objectiveService) List(actor Actor, cycleID uuid.UUID) ([]model.Objective, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleObjectives, permission.ActionView); err != nil {
		return nil, err
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	return s.objectiveRepo.FindByCycle(cycleID, scope)
}

func applyObjective(obj *model.Objective, req *ObjectiveRequest) {
	obj.CycleID = req.CycleID
	obj.EvaluatedID = req.EvaluatedID
	obj.Kind = req.Kind
	obj.Title = req.Title
	obj.Description = req.Description
	obj.Indicator = req.Indicator
	obj.Target = req.Target
	obj.Weight = req.Weight
	obj.Score = req.Score
}

func (s *objectiveService) Create(actor Actor, req *ObjectiveRequest) (*model.Objective, error) {
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	cycle, err := s.authorize(actor, permission.ActionCreate, req.CycleID, req.EvaluatedID)
	if err != nil {
		return nil, err
	}

	obj := &model.Objective{}
	applyObjective(obj, req)
	if err := s.checkWeights(obj); err != nil {
		return nil, err
	}
	obj.Stamp(actor.ID())
	lock := s.guard.lockedIn(actor.Role, permission.ModuleObjectives, permission.ActionCreate, cycle.ID)
	if err := s.objectiveRepo.Create(obj, lock); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionCreate, obj)
	s.rescore(actor, permission.ActionCreate, cycle, obj.EvaluatedID)
	return obj, nil
}

func (s *objectiveService) Update(actor Actor, id uuid.UUID, req *ObjectiveRequest) (*model.Objective, error) {
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	obj, err := s.objectiveRepo.FindByID(id)
	if err != nil {
		return nil, notFound("objective", err)
	}
	source, err := s.authorize(actor, permission.ActionUpdate, obj.CycleID, obj.EvaluatedID)
	if err != nil {
		return nil, err
	}
	prevEvaluated := obj.EvaluatedID
	target := source
	// moving an objective must also be allowed at its destination
	if req.CycleID != obj.CycleID || req.EvaluatedID != obj.EvaluatedID {
		if target, err = s.authorize(actor, permission.ActionUpdate, req.CycleID, req.EvaluatedID); err != nil {
			return nil, err
		}
	}

	applyObjective(obj, req)
	if err := s.checkWeights(obj); err != nil {
		return nil, err
	}
	obj.UpdatedBy = actor.ID()
	lock := s.guard.lockedIn(actor.Role, permission.ModuleObjectives, permission.ActionUpdate, target.ID)
	if err := s.objectiveRepo.Update(obj, lock); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionUpdate, obj)
	s.rescore(actor, permission.ActionUpdate, target, obj.EvaluatedID)
	if source.ID != target.ID || prevEvaluated != obj.EvaluatedID {
		s.rescore(actor, permission.ActionUpdate, source, prevEvaluated)
	}
	return obj, nil
}

func (s *objectiveService) Delete(actor Actor, id uuid.UUID) error {
	obj, err := s.objectiveRepo.FindByID(id)
	if err != nil {
		return notFound("objective", err)
	}
	cycle, err := s.authorize(actor, permission.ActionDelete, obj.CycleID, obj.EvaluatedID)
	if err != nil {
		return err
	}
	lock := s.guard.lockedIn(actor.Role, permission.ModuleObjectives, permission.ActionDelete, cycle.ID)
	if err := s.objectiveRepo.Delete(id, actor.ID(), lock); err != nil {
		return err
	}
	s.record(actor, permission.ActionDelete, obj)
	s.rescore(actor, permission.ActionDelete, cycle, obj.EvaluatedID)
	return nil
}
