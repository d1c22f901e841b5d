package service

import (
	"errors"
	"fmt"
	"time"

	"sgad-api/internal/audit"
	"sgad-api/internal/config"
	"sgad-api/internal/logging"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/scoring"
	"sgad-api/pkg/validator"

	"github.com/google/uuid"
)

type EvaluationService interface {
	List(actor Actor, query EvaluationQuery) ([]model.Evaluation, error)
	Get(actor Actor, id uuid.UUID) (*model.Evaluation, error)
	Submit(actor Actor, req *EvaluationRequest) (*model.Evaluation, error)
	Update(actor Actor, id uuid.UUID, req *EvaluationScores) (*model.Evaluation, error)
	Delete(actor Actor, id uuid.UUID) error
}

type EvaluationQuery struct {
	CycleID     *uuid.UUID
	Type        model.EvaluationType
	EvaluatedID *uuid.UUID
}

// EvaluationScores are the editable parts of an evaluation.
type EvaluationScores struct {
	Individual   *float64 `json:"individual" validate:"omitempty,score"`
	Equipa       *float64 `json:"equipa" validate:"omitempty,score"`
	Transversais *float64 `json:"transversais" validate:"omitempty,score"`
	Tecnicas     *float64 `json:"tecnicas" validate:"omitempty,score"`
	Comments     string   `json:"comments"`
}

type EvaluationRequest struct {
	CycleID     uuid.UUID `json:"cycle_id" validate:"uuid_required"`
	EvaluatedID uuid.UUID `json:"evaluated_id" validate:"uuid_required"`
	Type        string    `json:"type" validate:"required,oneof=auto superior pares utente"`
	Anonymous   bool      `json:"anonymous"`
	EvaluationScores
}

type evaluationService struct {
	evaluationRepo repository.EvaluationRepository
	cycleRepo      repository.CycleRepository
	objectiveRepo  repository.ObjectiveRepository
	evaluator      *permission.Evaluator
	guard          guard
	scopes         scopeResolver
	scoring        *config.ScoringConfig
	events         EventPublisher
	audit          *audit.Logger
	now            func() time.Time
}

func NewEvaluationService(
	evaluationRepo repository.EvaluationRepository,
	cycleRepo repository.CycleRepository,
	objectiveRepo repository.ObjectiveRepository,
	userRepo repository.UserRepository,
	evaluator *permission.Evaluator,
	scoringCfg *config.ScoringConfig,
	events EventPublisher,
	auditLog *audit.Logger,
) EvaluationService {
	return &evaluationService{
		evaluationRepo: evaluationRepo,
		cycleRepo:      cycleRepo,
		objectiveRepo:  objectiveRepo,
		evaluator:      evaluator,
		guard:          guard{evaluator},
		scopes:         scopeResolver{ev: evaluator, users: userRepo},
		scoring:        scoringCfg,
		events:         publisherOrNop(events),
		audit:          auditLog,
		now:            time.Now,
	}
}

var evaluationTypes = []model.EvaluationType{
	model.EvaluationAuto,
	model.EvaluationSuperior,
	model.EvaluationPares,
	model.EvaluationUtente,
}

func moduleOf(t model.EvaluationType) (permission.ModuleCode, error) {
	m, ok := t.Module()
	if !ok {
		return "", validationError(fmt.Errorf("unknown evaluation type %q", t))
	}
	return m, nil
}

// redact hides reviewer identities the actor's role must not see. The
// author always sees their own evaluation.
func (s *evaluationService) redact(actor Actor, ev *model.Evaluation) {
	if ev.EvaluatorID == nil || *ev.EvaluatorID == actor.UserID {
		return
	}
	switch {
	case ev.Anonymous:
		ev.EvaluatorID = nil
	case ev.Type == model.EvaluationPares && s.evaluator.ShouldHidePeerReviewerIdentity(actor.Role):
		ev.EvaluatorID = nil
	case ev.Type == model.EvaluationUtente && s.evaluator.ShouldHideUtenteIdentities(actor.Role):
		ev.EvaluatorID = nil
	}
}

// score recomputes NAF and grade for ev.
func (s *evaluationService) score(ev *model.Evaluation, cycle *model.Cycle) error {
	var objectives []model.Objective
	if ev.Type == model.EvaluationSuperior {
		var err error
		objectives, err = s.objectiveRepo.FindByCycle(cycle.ID, repository.Only(ev.EvaluatedID))
		if err != nil {
			return err
		}
	}
	return scoreEvaluation(ev, cycle, objectives, s.scoring)
}

// scoreEvaluation fills NAF and grade. Both stay empty until every
// component of the cycle's scheme has been filled in. On superior
// evaluations the objective components come from the worker's contracted
// objectives whenever objectives of that kind exist.
func scoreEvaluation(ev *model.Evaluation, cycle *model.Cycle, objectives []model.Objective, cfg *config.ScoringConfig) error {
	ev.NAF = nil
	ev.Grade = ""

	if ev.Type == model.EvaluationSuperior {
		deriveObjectiveScores(ev, objectives)
	}

	scheme, ok := cfg.Scheme(cycle.Scheme)
	if !ok {
		logging.Warn("cycle names an unknown scoring scheme", "cycle_id", cycle.ID, "scheme", cycle.Scheme)
		return nil
	}
	ev.Scheme = scheme.Name

	result, err := scoring.Evaluate(ev.SubScores(), scheme)
	if errors.Is(err, scoring.ErrMissingSubScore) {
		return nil
	}
	if err != nil {
		return err
	}
	ev.NAF = &result.NAF
	ev.Grade = result.Grade
	return nil
}

// deriveObjectiveScores replaces the individual and team components with
// the weighted mean of the matching objectives. A kind whose objectives
// are not all scored, or whose weights do not reach 100, leaves the
// component empty.
func deriveObjectiveScores(ev *model.Evaluation, objectives []model.Objective) {
	byKind := map[model.ObjectiveKind][]scoring.WeightedItem{}
	for _, o := range objectives {
		byKind[o.Kind] = append(byKind[o.Kind], scoring.WeightedItem{Weight: o.Weight, Score: o.Score})
	}
	derive := func(kind model.ObjectiveKind, target **float64) {
		items, ok := byKind[kind]
		if !ok {
			return
		}
		*target = nil
		if mean, ok := scoring.WeightedMean(items); ok {
			*target = &mean
		}
	}
	derive(model.ObjectiveIndividual, &ev.Individual)
	derive(model.ObjectiveEquipa, &ev.Equipa)
}

func (s *evaluationService) isAuthor(actor Actor, ev *model.Evaluation) bool {
	if actor.Role == permission.RoleAdmin {
		return true
	}
	if ev.EvaluatorID != nil && *ev.EvaluatorID == actor.UserID {
		return true
	}
	return ev.Type == model.EvaluationAuto && ev.EvaluatedID == actor.UserID
}

func (s *evaluationService) List(actor Actor, query EvaluationQuery) ([]model.Evaluation, error) {
	types := evaluationTypes
	if query.Type != "" {
		types = []model.EvaluationType{query.Type}
	}
	visible := make(map[model.EvaluationType]bool)
	for _, t := range types {
		m, err := moduleOf(t)
		if err != nil {
			return nil, err
		}
		if s.evaluator.HasPermission(actor.Role, m, permission.ActionView) {
			visible[t] = true
		}
	}
	if len(visible) == 0 {
		return nil, ErrForbidden
	}

	filter := repository.EvaluationFilter{CycleID: query.CycleID, Type: query.Type}
	if s.evaluator.HasScope(actor.Role, permission.ScopeSubmissionOnly) {
		filter.EvaluatorID = &actor.UserID
	} else {
		scope, err := s.scopes.resolve(actor)
		if err != nil {
			return nil, err
		}
		filter.Evaluated = scope
	}
	if query.EvaluatedID != nil {
		if !filter.Evaluated.Allows(*query.EvaluatedID) {
			return []model.Evaluation{}, nil
		}
		filter.Evaluated = repository.Only(*query.EvaluatedID)
	}

	found, err := s.evaluationRepo.Find(filter)
	if err != nil {
		return nil, err
	}
	out := make([]model.Evaluation, 0, len(found))
	for i := range found {
		if !visible[found[i].Type] {
			continue
		}
		s.redact(actor, &found[i])
		out = append(out, found[i])
	}
	return out, nil
}

func (s *evaluationService) Get(actor Actor, id uuid.UUID) (*model.Evaluation, error) {
	ev, err := s.evaluationRepo.FindByID(id)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	m, err := moduleOf(ev.Type)
	if err != nil {
		return nil, err
	}
	if err := s.guard.allow(actor.Role, m, permission.ActionView); err != nil {
		return nil, err
	}
	if !s.isAuthor(actor, ev) {
		scope, err := s.scopes.resolve(actor)
		if err != nil {
			return nil, err
		}
		if !scope.Allows(ev.EvaluatedID) {
			return nil, ErrForbidden
		}
	}
	s.redact(actor, ev)
	return ev, nil
}

func (s *evaluationService) checkSubject(actor Actor, t model.EvaluationType, evaluatedID uuid.UUID) error {
	if actor.Role == permission.RoleAdmin {
		return nil
	}
	switch t {
	case model.EvaluationAuto:
		if evaluatedID != actor.UserID {
			return ErrForbidden
		}
	case model.EvaluationSuperior:
		if evaluatedID == actor.UserID {
			return ErrForbidden
		}
		scope, err := s.scopes.resolve(actor)
		if err != nil {
			return err
		}
		if !scope.Allows(evaluatedID) {
			return ErrForbidden
		}
	case model.EvaluationPares:
		if evaluatedID == actor.UserID {
			return ErrForbidden
		}
	}
	return nil
}

func (s *evaluationService) anonymous(actor Actor, t model.EvaluationType, requested bool) bool {
	if t != model.EvaluationUtente {
		return false
	}
	if s.evaluator.IsAnonymousSubmissionRequired(actor.Role) {
		return true
	}
	return requested && s.evaluator.IsAnonymousSubmissionOptional(actor.Role)
}

func (s *evaluationService) Submit(actor Actor, req *EvaluationRequest) (*model.Evaluation, error) {
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	evType := model.EvaluationType(req.Type)
	m, err := moduleOf(evType)
	if err != nil {
		return nil, err
	}

	cycle, err := s.cycleRepo.FindByID(req.CycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	if err := s.guard.allowInCycle(actor.Role, m, permission.ActionCreate, cycle.State); err != nil {
		return nil, err
	}
	if err := s.checkSubject(actor, evType, req.EvaluatedID); err != nil {
		return nil, err
	}

	ev := &model.Evaluation{
		CycleID:     req.CycleID,
		EvaluatedID: req.EvaluatedID,
		Type:        evType,
		Anonymous:   s.anonymous(actor, evType, req.Anonymous),
	}
	if !ev.Anonymous {
		author := actor.UserID
		ev.EvaluatorID = &author
	}

	if evType != model.EvaluationUtente {
		dup := repository.EvaluationFilter{CycleID: &req.CycleID, Type: evType, Evaluated: repository.Only(req.EvaluatedID)}
		if evType == model.EvaluationPares {
			dup.EvaluatorID = &actor.UserID
		}
		existing, err := s.evaluationRepo.Find(dup)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: evaluation already submitted", ErrConflict)
		}
	}

	applyScores(ev, &req.EvaluationScores)
	if err := s.score(ev, cycle); err != nil {
		return nil, err
	}
	now := s.now()
	ev.SubmittedAt = &now
	if ev.Anonymous {
		ev.Stamp("")
	} else {
		ev.Stamp(actor.ID())
	}

	if err := s.evaluationRepo.Create(ev, s.guard.lockedIn(actor.Role, m, permission.ActionCreate, cycle.ID)); err != nil {
		return nil, err
	}

	entry := audit.Entry{
		Role:       actor.Role,
		Module:     m,
		Action:     string(permission.ActionCreate),
		EntityType: "evaluation",
		EntityID:   ev.ID.String(),
		Details:    map[string]interface{}{"cycle_id": ev.CycleID, "type": ev.Type},
	}
	if !ev.Anonymous {
		entry.UserID = actor.ID()
	}
	s.audit.Log(entry)
	s.events.Publish("evaluation_submitted", "", map[string]interface{}{
		"evaluation_id": ev.ID,
		"cycle_id":      ev.CycleID,
		"evaluated_id":  ev.EvaluatedID,
		"type":          ev.Type,
	})

	s.redact(actor, ev)
	return ev, nil
}

func applyScores(ev *model.Evaluation, scores *EvaluationScores) {
	ev.Individual = scores.Individual
	ev.Equipa = scores.Equipa
	ev.Transversais = scores.Transversais
	ev.Tecnicas = scores.Tecnicas
	ev.Comments = scores.Comments
}

func (s *evaluationService) Update(actor Actor, id uuid.UUID, req *EvaluationScores) (*model.Evaluation, error) {
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	ev, err := s.evaluationRepo.FindByID(id)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	m, err := moduleOf(ev.Type)
	if err != nil {
		return nil, err
	}
	cycle, err := s.cycleRepo.FindByID(ev.CycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	if err := s.guard.allowInCycle(actor.Role, m, permission.ActionUpdate, cycle.State); err != nil {
		return nil, err
	}
	if !s.isAuthor(actor, ev) {
		return nil, ErrForbidden
	}

	applyScores(ev, req)
	if err := s.score(ev, cycle); err != nil {
		return nil, err
	}
	ev.UpdatedBy = actor.ID()
	if err := s.evaluationRepo.Update(ev, s.guard.lockedIn(actor.Role, m, permission.ActionUpdate, cycle.ID)); err != nil {
		return nil, err
	}

	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     m,
		Action:     string(permission.ActionUpdate),
		EntityType: "evaluation",
		EntityID:   ev.ID.String(),
	})
	s.events.Publish("evaluation_updated", "", map[string]interface{}{
		"evaluation_id": ev.ID,
		"cycle_id":      ev.CycleID,
	})

	s.redact(actor, ev)
	return ev, nil
}

func (s *evaluationService) Delete(actor Actor, id uuid.UUID) error {
	ev, err := s.evaluationRepo.FindByID(id)
	if err != nil {
		return notFound("evaluation", err)
	}
	m, err := moduleOf(ev.Type)
	if err != nil {
		return err
	}
	cycle, err := s.cycleRepo.FindByID(ev.CycleID)
	if err != nil {
		return notFound("cycle", err)
	}
	if err := s.guard.allowInCycle(actor.Role, m, permission.ActionDelete, cycle.State); err != nil {
		return err
	}
	if !s.isAuthor(actor, ev) {
		return ErrForbidden
	}
	if err := s.evaluationRepo.Delete(id, actor.ID(), s.guard.lockedIn(actor.Role, m, permission.ActionDelete, cycle.ID)); err != nil {
		return err
	}
	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     m,
		Action:     string(permission.ActionDelete),
		EntityType: "evaluation",
		EntityID:   ev.ID.String(),
	})
	return nil
}
