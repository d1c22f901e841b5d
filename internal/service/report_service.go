package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"sgad-api/internal/config"
	"sgad-api/internal/logging"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/report"
	"sgad-api/internal/repository"

	"github.com/google/uuid"
)

type ReportService interface {
	// EvaluationSheet renders the official sheet of one evaluation with
	// the weights of the chosen template.
	EvaluationSheet(actor Actor, evaluationID uuid.UUID, template string) ([]byte, error)
	// CycleSummary renders the final grades of every superior evaluation
	// the actor can see in a cycle.
	CycleSummary(actor Actor, cycleID uuid.UUID) ([]byte, error)
}

type reportService struct {
	evaluations EvaluationService
	cycleRepo   repository.CycleRepository
	userRepo    repository.UserRepository
	guard       guard
	scoring     *config.ScoringConfig
	institution string
	now         func() time.Time
}

func NewReportService(
	evaluations EvaluationService,
	cycleRepo repository.CycleRepository,
	userRepo repository.UserRepository,
	evaluator *permission.Evaluator,
	scoringCfg *config.ScoringConfig,
	institution string,
) ReportService {
	return &reportService{
		evaluations: evaluations,
		cycleRepo:   cycleRepo,
		userRepo:    userRepo,
		guard:       guard{evaluator},
		scoring:     scoringCfg,
		institution: institution,
		now:         time.Now,
	}
}

func (s *reportService) EvaluationSheet(actor Actor, evaluationID uuid.UUID, template string) ([]byte, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleReports, permission.ActionView); err != nil {
		return nil, err
	}
	tpl, err := report.LookupTemplate(template)
	if err != nil {
		return nil, validationError(err)
	}
	scheme, ok := s.scoring.Schemes[tpl.Scheme]
	if !ok {
		return nil, fmt.Errorf("scheme %q of template %q is not configured", tpl.Scheme, tpl.Name)
	}

	ev, err := s.evaluations.Get(actor, evaluationID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.cycleRepo.FindByID(ev.CycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}
	evaluated, err := s.userRepo.FindByID(ev.EvaluatedID)
	if err != nil {
		return nil, notFound("user", err)
	}

	if ev.Scheme != "" && ev.Scheme != scheme.Name {
		logging.Warn("evaluation sheet printed under a different scheme",
			"evaluation_id", ev.ID, "template", tpl.Name, "template_scheme", scheme.Name, "evaluation_scheme", ev.Scheme)
	}

	evaluatorName := "Anónimo"
	if ev.EvaluatorID != nil {
		if u, err := s.userRepo.FindByID(*ev.EvaluatorID); err == nil {
			evaluatorName = u.FullName
		}
	}

	var buf bytes.Buffer
	err = report.RenderEvaluationSheet(&buf, tpl, scheme, report.EvaluationSheet{
		Institution:   s.institution,
		CycleName:     cycle.Name,
		CycleState:    string(cycle.State),
		EvaluatedName: evaluated.FullName,
		EmployeeNo:    evaluated.EmployeeNo,
		JobTitle:      evaluated.JobTitle,
		OrgUnit:       evaluated.OrgUnit,
		EvaluatorName: evaluatorName,
		Scores:        ev.SubScores(),
		Comments:      ev.Comments,
		GeneratedAt:   s.now(),

		RecordedScheme: ev.Scheme,
		RecordedNAF:    ev.NAF,
		RecordedGrade:  ev.Grade,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) CycleSummary(actor Actor, cycleID uuid.UUID) ([]byte, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleReports, permission.ActionView); err != nil {
		return nil, err
	}
	cycle, err := s.cycleRepo.FindByID(cycleID)
	if err != nil {
		return nil, notFound("cycle", err)
	}

	evs, err := s.evaluations.List(actor, EvaluationQuery{CycleID: &cycleID, Type: model.EvaluationSuperior})
	if err != nil && !errors.Is(err, ErrForbidden) {
		return nil, err
	}

	users, err := s.userRepo.FindAll(repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows := make([]report.SummaryRow, 0, len(evs))
	for _, ev := range evs {
		u := byID[ev.EvaluatedID]
		rows = append(rows, report.SummaryRow{
			EvaluatedName: u.FullName,
			OrgUnit:       u.OrgUnit,
			NAF:           ev.NAF,
			Grade:         ev.Grade,
		})
	}

	var buf bytes.Buffer
	if err := report.RenderCycleSummary(&buf, s.institution, cycle.Name, s.now(), rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
