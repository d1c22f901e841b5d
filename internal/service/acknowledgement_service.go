package service

import (
	"fmt"
	"time"

	"sgad-api/internal/audit"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"

	"github.com/google/uuid"
)

type AcknowledgementService interface {
	Acknowledge(actor Actor, evaluationID uuid.UUID, comment string) (*model.Acknowledgement, error)
	List(actor Actor, evaluationID uuid.UUID) ([]model.Acknowledgement, error)
}

type acknowledgementService struct {
	ackRepo        repository.AcknowledgementRepository
	evaluationRepo repository.EvaluationRepository
	cycleRepo      repository.CycleRepository
	guard          guard
	scopes         scopeResolver
	audit          *audit.Logger
	now            func() time.Time
}

func NewAcknowledgementService(
	ackRepo repository.AcknowledgementRepository,
	evaluationRepo repository.EvaluationRepository,
	cycleRepo repository.CycleRepository,
	userRepo repository.UserRepository,
	evaluator *permission.Evaluator,
	auditLog *audit.Logger,
) AcknowledgementService {
	return &acknowledgementService{
		ackRepo:        ackRepo,
		evaluationRepo: evaluationRepo,
		cycleRepo:      cycleRepo,
		guard:          guard{evaluator},
		scopes:         scopeResolver{ev: evaluator, users: userRepo},
		audit:          auditLog,
		now:            time.Now,
	}
}

// Acknowledge records that the evaluated worker took notice of the
// evaluation. Only the evaluated worker can acknowledge.
func (s *acknowledgementService) Acknowledge(actor Actor, evaluationID uuid.UUID, comment string) (*model.Acknowledgement, error) {
	ev, err := s.evaluationRepo.FindByID(evaluationID)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	cycle, err := s.cycleRepo.FindByID(ev.CycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	if err := s.guard.allowInCycle(actor.Role, permission.ModuleAcknowledgement, permission.ActionCreate, cycle.State); err != nil {
		return nil, err
	}
	if ev.EvaluatedID != actor.UserID {
		return nil, ErrForbidden
	}

	existing, err := s.ackRepo.FindByEvaluation(evaluationID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.UserID == actor.UserID {
			return nil, fmt.Errorf("%w: evaluation already acknowledged", ErrConflict)
		}
	}

	ack := &model.Acknowledgement{
		EvaluationID:   evaluationID,
		UserID:         actor.UserID,
		AcknowledgedAt: s.now(),
		Comment:        comment,
	}
	ack.Stamp(actor.ID())
	lock := s.guard.lockedIn(actor.Role, permission.ModuleAcknowledgement, permission.ActionCreate, cycle.ID)
	if err := s.ackRepo.Create(ack, lock); err != nil {
		return nil, err
	}

	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     permission.ModuleAcknowledgement,
		Action:     string(permission.ActionCreate),
		EntityType: "acknowledgement",
		EntityID:   ack.ID.String(),
		Details:    map[string]interface{}{"evaluation_id": evaluationID},
	})
	return ack, nil
}

func (s *acknowledgementService) List(actor Actor, evaluationID uuid.UUID) ([]model.Acknowledgement, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleAcknowledgement, permission.ActionView); err != nil {
		return nil, err
	}
	ev, err := s.evaluationRepo.FindByID(evaluationID)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(ev.EvaluatedID) {
		return nil, ErrForbidden
	}
	return s.ackRepo.FindByEvaluation(evaluationID)
}
