package service

import (
	"testing"

	"sgad-api/internal/permission"
	"sgad-api/internal/scoring"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (w *world) cycleService() CycleService {
	return NewCycleService(w.cycles, w.evaluator, w.scoring, w.events, w.audit)
}

func TestTransition_ForwardOneStep(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()

	c, err := svc.Transition(actorOf(w.dirigente), w.cycle.ID, "em_acompanhamento", "arranque")
	require.NoError(t, err)
	assert.Equal(t, permission.CycleEmAcompanhamento, c.State)

	c, err = svc.Transition(actorOf(w.dirigente), w.cycle.ID, "fechado", "")
	require.NoError(t, err)
	assert.Equal(t, permission.CycleFechado, c.State)

	history, err := svc.History(actorOf(w.dirigente), w.cycle.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, permission.CycleAberto, history[0].From)
	assert.Equal(t, "arranque", history[0].Note)

	assert.Equal(t, []string{"cycle_state_changed", "cycle_state_changed"}, w.events.types())
	w.audit.Wait()
	assert.Len(t, w.store.all(), 2)
}

func TestTransition_Rejected(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()

	_, err := svc.Transition(actorOf(w.dirigente), w.cycle.ID, "fechado", "")
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, permission.ErrInvalidTransition)

	_, err = svc.Transition(actorOf(w.dirigente), w.cycle.ID, "aberto", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Transition(actorOf(w.dirigente), w.cycle.ID, "arquivado", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Transition(actorOf(w.avaliador), w.cycle.ID, "em_acompanhamento", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transition(actorOf(w.dirigente), uuid.New(), "em_acompanhamento", "")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, w.events.types())
}

func TestTransition_Homologation(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()
	w.setState(permission.CycleFechado)

	_, err := svc.Transition(actorOf(w.avaliador), w.cycle.ID, "homologado", "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Transition(actorOf(w.avaliado), w.cycle.ID, "homologado", "")
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := svc.Transition(actorOf(w.dirigente), w.cycle.ID, "homologado", "homologação anual")
	require.NoError(t, err)
	assert.Equal(t, permission.CycleHomologado, c.State)

	w.audit.Wait()
	entries := w.store.all()
	require.Len(t, entries, 1)
	assert.Equal(t, string(permission.ModuleHomologation), entries[0].Module)

	_, err = svc.Transition(actorOf(w.admin), w.cycle.ID, "homologado", "")
	assert.ErrorIs(t, err, ErrConflict, "homologado is terminal")
}

func TestCycleCRUD(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()
	req := &CycleRequest{Name: "Ciclo 2027", Year: 2027, Period: "anual", StartDate: "2027-01-01", EndDate: "2027-12-31"}

	_, err := svc.Create(actorOf(w.dirigente), req)
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := svc.Create(actorOf(w.admin), req)
	require.NoError(t, err)
	assert.Equal(t, permission.CycleAberto, c.State)
	assert.Equal(t, scoring.SchemeObjetivosEquipa, c.Scheme)
	assert.Equal(t, w.admin.ID.String(), c.CreatedBy)

	bad := *req
	bad.EndDate = "2026-12-31"
	_, err = svc.Create(actorOf(w.admin), &bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = *req
	bad.Scheme = "objetivos_2009"
	_, err = svc.Create(actorOf(w.admin), &bad)
	assert.ErrorIs(t, err, ErrValidation)

	upd := *req
	upd.Scheme = scoring.SchemeObjetivos
	c, err = svc.Update(actorOf(w.dirigente), c.ID, &upd)
	require.NoError(t, err)
	assert.Equal(t, scoring.SchemeObjetivos, c.Scheme)

	w.setState(permission.CycleFechado)
	assert.ErrorIs(t, svc.Delete(actorOf(w.admin), w.cycle.ID), ErrConflict)
	assert.NoError(t, svc.Delete(actorOf(w.admin), c.ID))
}

func TestCycleRead(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()

	for _, a := range []Actor{actorOf(w.avaliado), actorOf(w.avaliador), actorOf(w.utenteExt)} {
		cycles, err := svc.List(a)
		require.NoError(t, err)
		assert.Len(t, cycles, 1)
	}

	_, err := svc.Get(Actor{UserID: uuid.New(), Role: "visitante"}, w.cycle.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCycleUpdate_SchemeFrozenOnceClosed(t *testing.T) {
	w := newWorld(t)
	svc := w.cycleService()

	ev, err := w.evaluationService().Submit(actorOf(w.avaliador), &EvaluationRequest{
		CycleID:          w.cycle.ID,
		EvaluatedID:      w.avaliado.ID,
		Type:             "superior",
		EvaluationScores: fullScores(),
	})
	require.NoError(t, err)
	require.Equal(t, scoring.SchemeObjetivosEquipa, ev.Scheme)

	req := &CycleRequest{Name: "Ciclo 2026", Year: 2026, StartDate: "2026-01-01", EndDate: "2026-12-31", Scheme: scoring.SchemeObjetivos}
	w.setState(permission.CycleFechado)
	_, err = svc.Update(actorOf(w.dirigente), w.cycle.ID, req)
	assert.ErrorIs(t, err, ErrCycleLocked)
	assert.Equal(t, scoring.SchemeObjetivosEquipa, w.cycles.cycles[w.cycle.ID].Scheme)

	// other fields stay editable
	req.Scheme = scoring.SchemeObjetivosEquipa
	req.Name = "Ciclo 2026 (revisto)"
	c, err := svc.Update(actorOf(w.dirigente), w.cycle.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Ciclo 2026 (revisto)", c.Name)

	w.setState(permission.CycleAberto)
	req.Scheme = scoring.SchemeObjetivos
	c, err = svc.Update(actorOf(w.dirigente), w.cycle.ID, req)
	require.NoError(t, err)
	assert.Equal(t, scoring.SchemeObjetivos, c.Scheme)
}
