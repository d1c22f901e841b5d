package service

import (
	"testing"

	"sgad-api/internal/audit"
	"sgad-api/internal/config"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
)

var (
	_ repository.UserRepository            = (*fakeUserRepo)(nil)
	_ repository.CycleRepository           = (*fakeCycleRepo)(nil)
	_ repository.ObjectiveRepository       = (*fakeObjectiveRepo)(nil)
	_ repository.EvaluationRepository      = (*fakeEvaluationRepo)(nil)
	_ repository.AcknowledgementRepository = (*fakeAckRepo)(nil)
	_ repository.ComplaintRepository       = (*fakeComplaintRepo)(nil)
)

// world is a small institution: one unit (DRH) with a director, an
// evaluator and their evaluated worker, a worker of another unit (DAF)
// and two utentes.
type world struct {
	admin, dirigente, avaliador, avaliado, outsider, utenteInt, utenteExt *model.User

	cycle *model.Cycle

	users       *fakeUserRepo
	cycles      *fakeCycleRepo
	objectives  *fakeObjectiveRepo
	evaluations *fakeEvaluationRepo
	acks        *fakeAckRepo
	complaints  *fakeComplaintRepo

	evaluator *permission.Evaluator
	scoring   *config.ScoringConfig
	events    *fakePublisher
	audit     *audit.Logger
	store     *memAuditStore
}

func newUser(email string, role permission.Role, unit string) *model.User {
	u := &model.User{Email: email, FullName: email, RoleCode: role, OrgUnit: unit, IsActive: true}
	u.ID = uuid.New()
	return u
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		admin:     newUser("admin@sgad.local", permission.RoleAdmin, ""),
		dirigente: newUser("dirigente@sgad.local", permission.RoleDirigente, "DRH"),
		avaliador: newUser("avaliador@sgad.local", permission.RoleAvaliador, "DRH"),
		avaliado:  newUser("avaliado@sgad.local", permission.RoleAvaliado, "DRH"),
		outsider:  newUser("outsider@sgad.local", permission.RoleAvaliado, "DAF"),
		utenteInt: newUser("interno@sgad.local", permission.RoleUtenteInterno, ""),
		utenteExt: newUser("externo@sgad.local", permission.RoleUtenteExterno, ""),
	}
	w.avaliado.SuperiorID = &w.avaliador.ID
	w.avaliador.SuperiorID = &w.dirigente.ID

	w.cycle = &model.Cycle{Name: "Ciclo 2026", Year: 2026, State: permission.CycleAberto, Scheme: scoring.SchemeObjetivosEquipa}
	w.cycle.ID = uuid.New()

	w.users = newFakeUserRepo(w.admin, w.dirigente, w.avaliador, w.avaliado, w.outsider, w.utenteInt, w.utenteExt)
	w.cycles = newFakeCycleRepo(w.cycle)
	w.objectives = newFakeObjectiveRepo()
	w.evaluations = newFakeEvaluationRepo()
	w.acks = &fakeAckRepo{}
	w.objectives.cycles = w.cycles
	w.evaluations.cycles = w.cycles
	w.acks.cycles = w.cycles
	w.complaints = newFakeComplaintRepo()

	w.evaluator = permission.NewDefaultEvaluator()
	w.scoring = &config.ScoringConfig{Schemes: scoring.DefaultSchemes(), DefaultScheme: scoring.SchemeObjetivosEquipa}
	w.events = &fakePublisher{}
	w.audit, w.store = newAudit()
	return w
}

func (w *world) setState(s permission.CycleState) {
	w.cycles.cycles[w.cycle.ID].State = s
}

func (w *world) evaluationService() EvaluationService {
	return NewEvaluationService(w.evaluations, w.cycles, w.objectives, w.users, w.evaluator, w.scoring, w.events, w.audit)
}
