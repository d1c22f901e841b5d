package service

import (
	"fmt"
	"time"

	"sgad-api/internal/audit"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/pkg/validator"

	"github.com/google/uuid"
)

type ComplaintService interface {
	Create(actor Actor, req *ComplaintRequest) (*model.Complaint, error)
	Respond(actor Actor, id uuid.UUID, req *ComplaintResponse) (*model.Complaint, error)
	List(actor Actor, filter ComplaintQuery) ([]model.Complaint, error)
	Get(actor Actor, id uuid.UUID) (*model.Complaint, error)
}

type ComplaintRequest struct {
	EvaluationID uuid.UUID `json:"evaluation_id" validate:"uuid_required"`
	Kind         string    `json:"kind" validate:"required,oneof=reclamacao recurso"`
	Body         string    `json:"body" validate:"required,min=10"`
}

type ComplaintResponse struct {
	Status   string `json:"status" validate:"required,oneof=deferida indeferida"`
	Response string `json:"response" validate:"required"`
}

type ComplaintQuery struct {
	CycleID      *uuid.UUID
	EvaluationID *uuid.UUID
	Status       model.ComplaintStatus
}

type complaintService struct {
	complaintRepo  repository.ComplaintRepository
	evaluationRepo repository.EvaluationRepository
	guard          guard
	scopes         scopeResolver
	events         EventPublisher
	audit          *audit.Logger
	now            func() time.Time
}

func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	evaluationRepo repository.EvaluationRepository,
	userRepo repository.UserRepository,
	evaluator *permission.Evaluator,
	events EventPublisher,
	auditLog *audit.Logger,
) ComplaintService {
	return &complaintService{
		complaintRepo:  complaintRepo,
		evaluationRepo: evaluationRepo,
		guard:          guard{evaluator},
		scopes:         scopeResolver{ev: evaluator, users: userRepo},
		events:         publisherOrNop(events),
		audit:          auditLog,
		now:            time.Now,
	}
}

func (s *complaintService) record(actor Actor, action permission.Action, c *model.Complaint) {
	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     permission.ModuleComplaints,
		Action:     string(action),
		EntityType: "complaint",
		EntityID:   c.ID.String(),
		Details:    map[string]interface{}{"evaluation_id": c.EvaluationID, "status": c.Status},
	})
}

// Create lodges a complaint. Complaints are not cycle-locked: they are
// lodged once the results are known.
func (s *complaintService) Create(actor Actor, req *ComplaintRequest) (*model.Complaint, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleComplaints, permission.ActionCreate); err != nil {
		return nil, err
	}
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	ev, err := s.evaluationRepo.FindByID(req.EvaluationID)
	if err != nil {
		return nil, notFound("evaluation", err)
	}
	if actor.Role != permission.RoleAdmin && ev.EvaluatedID != actor.UserID {
		return nil, ErrForbidden
	}

	c := &model.Complaint{
		EvaluationID:  ev.ID,
		CycleID:       ev.CycleID,
		ComplainantID: actor.UserID,
		Kind:          model.ComplaintKind(req.Kind),
		Body:          req.Body,
		Status:        model.ComplaintPendente,
	}
	c.Stamp(actor.ID())
	if err := s.complaintRepo.Create(c); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionCreate, c)
	s.events.Publish("complaint_created", "", map[string]interface{}{
		"complaint_id":  c.ID,
		"evaluation_id": c.EvaluationID,
	})
	return c, nil
}

func (s *complaintService) Respond(actor Actor, id uuid.UUID, req *ComplaintResponse) (*model.Complaint, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleComplaints, permission.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}
	c, err := s.complaintRepo.FindByID(id)
	if err != nil {
		return nil, notFound("complaint", err)
	}
	if c.Status != model.ComplaintPendente {
		return nil, fmt.Errorf("%w: complaint already answered", ErrConflict)
	}
	if c.ComplainantID == actor.UserID {
		return nil, ErrForbidden
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(c.ComplainantID) {
		return nil, ErrForbidden
	}

	now := s.now()
	responder := actor.UserID
	c.Status = model.ComplaintStatus(req.Status)
	c.Response = req.Response
	c.RespondedBy = &responder
	c.RespondedAt = &now
	c.UpdatedBy = actor.ID()
	if err := s.complaintRepo.Update(c); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionUpdate, c)
	s.events.Publish("complaint_answered", "", map[string]interface{}{
		"complaint_id": c.ID,
		"status":       c.Status,
	})
	return c, nil
}

func (s *complaintService) List(actor Actor, query ComplaintQuery) ([]model.Complaint, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleComplaints, permission.ActionView); err != nil {
		return nil, err
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	return s.complaintRepo.Find(repository.ComplaintFilter{
		CycleID:      query.CycleID,
		EvaluationID: query.EvaluationID,
		Status:       query.Status,
		Complainants: scope,
	})
}

func (s *complaintService) Get(actor Actor, id uuid.UUID) (*model.Complaint, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleComplaints, permission.ActionView); err != nil {
		return nil, err
	}
	c, err := s.complaintRepo.FindByID(id)
	if err != nil {
		return nil, notFound("complaint", err)
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(c.ComplainantID) {
		return nil, ErrForbidden
	}
	return c, nil
}
